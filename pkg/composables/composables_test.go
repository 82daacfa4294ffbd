package composables

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUseTx_NoPool(t *testing.T) {
	_, err := UseTx(context.Background())
	require.ErrorIs(t, err, ErrNoPool)
}

func TestPoolTransactor_RequiresPool(t *testing.T) {
	called := false
	err := NewPoolTransactor(nil).InTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	require.True(t, errors.Is(err, ErrNoPool))
	require.False(t, called)
}

func TestIdentity_Label(t *testing.T) {
	require.Equal(t, SystemActor, UseActor(context.Background()))

	ctx := WithIdentity(context.Background(), Identity{UserID: 1, Username: " admin1 ", Role: "admin"})
	identity, ok := UseIdentity(ctx)
	require.True(t, ok)
	require.True(t, identity.IsAdmin())
	require.Equal(t, "admin1", UseActor(ctx))

	require.Equal(t, SystemActor, Identity{}.Label())
}

func TestUseLogger_FallsBack(t *testing.T) {
	require.NotNil(t, UseLogger(context.Background()))
}
