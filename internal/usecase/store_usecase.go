// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"campus/internal/domain/entity"
)

// --- Input DTOs ---

// CreatePostInput defines the fields a user fills in when composing a post.
// ID, timestamps, likes and comments are assigned by the store.
type CreatePostInput struct {
	Organization string
	Author       string // Optional; defaults to the current username.
	Heading      string
	Body         string
	IsEvent      bool
	EventDate    *time.Time // Required when IsEvent is set, ignored otherwise.
}

// --- Output DTOs ---

// Snapshot is a deep copy of everything the presentation layer renders.
type Snapshot struct {
	CurrentUser *entity.User    `json:"currentUser"`
	Posts       []entity.Post   `json:"posts"`
	Rewards     []entity.Reward `json:"rewards"`
}

// StoreUsecase is the single owner of in-memory application state.
// Mutations either apply completely and schedule persistence, or return an error and change nothing.
type StoreUsecase interface {
	AddPost(ctx context.Context, post *entity.Post) error
	CreatePost(ctx context.Context, input CreatePostInput) (*entity.Post, error)
	UpdatePost(ctx context.Context, post *entity.Post) error
	DeletePost(ctx context.Context, postID string) error

	LikePost(ctx context.Context, postID string) error
	UnlikePost(ctx context.Context, postID string) error

	AddComment(ctx context.Context, postID string, comment *entity.Comment) error
	CreateComment(ctx context.Context, postID, content string) (*entity.Comment, error)
	UpdateComment(ctx context.Context, postID string, comment *entity.Comment) error
	DeleteComment(ctx context.Context, postID, commentID string) error

	UpdateUser(ctx context.Context, user *entity.User) error
	// SetUser replaces the current user unconditionally. nil logs out.
	SetUser(ctx context.Context, user *entity.User)

	CurrentUser() *entity.User
	Posts() []entity.Post
	Post(postID string) (*entity.Post, error)
	OrderedPosts() []entity.Post
	Rewards() []entity.Reward
	Snapshot() Snapshot
	EventDays() []string
	EventsOn(day string) []entity.Post

	// Hydrate installs restored state without scheduling any writes.
	Hydrate(ctx context.Context, user *entity.User, posts []entity.Post)

	// Subscribe returns a channel that always holds the newest snapshot after a change.
	// The returned func stops delivery and closes the channel.
	Subscribe() (<-chan Snapshot, func())
}
