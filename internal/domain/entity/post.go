package entity

import (
	"slices"
	"time"
)

// Post is a piece of content on the board. A post with IsEvent set also appears on the calendar.
type Post struct {
	ID           string     `json:"id" validate:"required"`
	Organization string     `json:"organization" validate:"required"`
	Author       string     `json:"author" validate:"required"`
	Heading      string     `json:"heading" validate:"required"`
	Body         string     `json:"body" validate:"required"`
	IsEvent      bool       `json:"isEvent"`
	EventDate    *time.Time `json:"eventDate,omitempty"` // Set only when IsEvent is true.
	CreatedAt    time.Time  `json:"createdAt" validate:"required"`
	Likes        int        `json:"likes" validate:"min=0"`
	Comments     []Comment  `json:"comments" validate:"required"` // Insertion order is display order.
}

// Clone returns a deep copy of the post, including its comments.
func (p Post) Clone() Post {
	cloned := p
	if p.EventDate != nil {
		eventDate := *p.EventDate
		cloned.EventDate = &eventDate
	}
	cloned.Comments = slices.Clone(p.Comments)
	if cloned.Comments == nil {
		cloned.Comments = []Comment{}
	}

	return cloned
}

// CommentIndex returns the position of the comment with the given ID, or -1.
func (p Post) CommentIndex(commentID string) int {
	return slices.IndexFunc(p.Comments, func(c Comment) bool { return c.ID == commentID })
}

// ClonePosts deep-copies a post slice. The result is never nil.
func ClonePosts(posts []Post) []Post {
	cloned := make([]Post, len(posts))
	for i, post := range posts {
		cloned[i] = post.Clone()
	}

	return cloned
}

// OrderByRecency returns a copy of posts sorted newest first by CreatedAt.
// Posts sharing a timestamp keep their relative order.
func OrderByRecency(posts []Post) []Post {
	ordered := slices.Clone(posts)
	slices.SortStableFunc(ordered, func(a, b Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return ordered
}
