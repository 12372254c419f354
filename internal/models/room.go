package models

import "time"

// Room represents a teaching room. The scheduler treats rooms as read-only
// reference data for the duration of one generation run.
type Room struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Code         string    `db:"code" json:"code"`
	Capacity     int       `db:"capacity" json:"capacity"`
	RoomType     string    `db:"room_type" json:"room_type"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RoomFilter defines filter criteria for listing rooms.
type RoomFilter struct {
	RoomType    string
	MinCapacity int
	Active      *bool
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
