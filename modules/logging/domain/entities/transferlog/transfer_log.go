package transferlog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var ErrInvalidKind = errors.New("transfer log kind must be import or export")

type Kind string

const (
	KindImport Kind = "import"
	KindExport Kind = "export"
)

func (k Kind) Valid() bool {
	return k == KindImport || k == KindExport
}

// TransferLog is an append-only audit row for one import or export.
type TransferLog struct {
	ID          int64
	Kind        Kind
	Mode        string
	Filename    string
	Count       int
	PerformedBy string
	CreatedAt   time.Time
}

type FindParams struct {
	Kind        Kind
	PerformedBy string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

type Repository interface {
	List(ctx context.Context, params *FindParams) ([]*TransferLog, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, log *TransferLog) error
}
