package models

import (
	"database/sql"
	"time"
)

// Order is a completed customer submission. Status starts as "pending"
// and is only ever changed through the administrative status update.
type Order struct {
	ID                 int64
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	OriginalImageURL   string
	GeneratedAvatarURL string
	Prompt             sql.NullString
	Status             string
	ModelURL           sql.NullString
	CreatedAt          time.Time
}
