package models

import (
	"time"
)

// PostDB represents a post record in the database
type PostDB struct {
	ID        int64     `json:"id" db:"id"`                 // Primary key
	Title     string    `json:"title" db:"title"`           // Post title
	Content   string    `json:"content" db:"content"`      // Post body
	Private   bool      `json:"private" db:"private"`       // Visible to owner only when true
	CreatedAt time.Time `json:"created_at" db:"created_at"` // Creation timestamp
	OwnerID   int64     `json:"owner_id" db:"owner_id"`     // Authoring user
}

// PostFilter holds the optional filters for listing posts.
type PostFilter struct {
	Search  string // substring match on title, case-sensitive
	OwnerID *int64 // exact owner match when set
	Limit   int
	Offset  int
}
