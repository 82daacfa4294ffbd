package member

import (
	"context"

	"github.com/go-faster/errors"
)

var ErrUngroupable = errors.New("members cannot be grouped by this field")

// Member types counted separately on the dashboard.
const (
	TypeHonorary = "กิติมศักดิ์"
	TypeRegular  = "สามัญ"
	TypeGeneral  = "ทั่วไป"
)

// GroupFields are the attributes the roster can be grouped by.
var GroupFields = []Field{FieldType, FieldDistrict, FieldGraduationYear, FieldGender}

func Groupable(f Field) bool {
	for _, g := range GroupFields {
		if g == f {
			return true
		}
	}
	return false
}

// GroupCount is the number of members sharing Key. Key is empty for
// members without a value.
type GroupCount struct {
	Key   string
	Count int64
}

type StatsRepository interface {
	CountBy(ctx context.Context, f Field) ([]GroupCount, error)
}
