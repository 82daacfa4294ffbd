package memstore

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
)

func TestStore_InTxRollsBack(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(ctx context.Context) error {
		_, err := s.MemberRepository().Create(ctx, member.Member{MemberID: "M1"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Empty(t, s.Members())
	require.Zero(t, s.Commits)
}

func TestStore_AccountConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()
	accounts := s.AccountRepository()

	_, err := accounts.Create(ctx, account.Pending("M404"))
	require.ErrorIs(t, err, account.ErrMemberMissing)

	s.PutMember(member.Member{MemberID: "M1"})
	s.PutMember(member.Member{MemberID: "M2"})
	_, err = accounts.Create(ctx, account.Account{Username: "a", MemberID: "M1"})
	require.NoError(t, err)
	_, err = accounts.Create(ctx, account.Account{Username: "b", MemberID: "M1"})
	require.ErrorIs(t, err, account.ErrMemberTaken)
	_, err = accounts.Create(ctx, account.Account{Username: "a", MemberID: "M2"})
	require.ErrorIs(t, err, account.ErrUsernameTaken)

	require.ErrorIs(t, s.MemberRepository().Delete(ctx, "M1"), member.ErrHasAccount)
	free, err := s.MemberRepository().ListWithoutAccount(ctx)
	require.NoError(t, err)
	require.Len(t, free, 1)
	require.Equal(t, "M2", free[0].MemberID)
}
