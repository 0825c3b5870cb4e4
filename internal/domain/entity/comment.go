package entity

import "time"

// Comment is a reply attached to exactly one post.
type Comment struct {
	ID        string    `json:"id" validate:"required"`
	Author    string    `json:"author" validate:"required"`
	Content   string    `json:"content" validate:"required"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
}
