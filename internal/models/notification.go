package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Notification is a persisted user-facing message.
type Notification struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	Title     string         `db:"title" json:"title"`
	Message   string         `db:"message" json:"message"`
	Type      string         `db:"type" json:"type"`
	Data      types.JSONText `db:"data" json:"data,omitempty"`
	Read      bool           `db:"is_read" json:"is_read"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
