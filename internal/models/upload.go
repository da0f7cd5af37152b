package models

import (
	"database/sql"
	"time"
)

// Upload is the persisted metadata row for one accepted image file.
// Rows are immutable after insert; later pipeline stages reference them
// by ID only.
type Upload struct {
	ID           int64
	OriginalName string
	StoragePath  string
	FileType     string
	FileSize     int64
	UserID       sql.NullInt64
	CreatedAt    time.Time
}
