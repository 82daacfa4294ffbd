package models

import "time"

type TransferLog struct {
	ID          int64
	Kind        string
	Mode        string
	Filename    string
	Count       int
	PerformedBy string
	CreatedAt   time.Time
}
