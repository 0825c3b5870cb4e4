// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"campus/config"
	deliverycontext "campus/internal/delivery/context"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/repository"
	"campus/internal/domain/service"
	"campus/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	anonymousAuthor = "Anonymous"
	guestAuthor     = "Guest"
)

// storeService implements the StoreUsecase interface.
// All state lives behind mu; persistence effects are enqueued while mu is held
// so the writer sees them in mutation order.
type storeService struct {
	writer service.SnapshotWriter
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	mu          sync.RWMutex
	currentUser *entity.User
	posts       []entity.Post
	rewards     []entity.Reward

	subMu       sync.Mutex
	subscribers map[int]chan usecase.Snapshot
	nextSubID   int
}

// StoreServiceParams holds dependencies for StoreService, injected by Fx.
type StoreServiceParams struct {
	fx.In

	Writer service.SnapshotWriter
	Config *config.Config
	Logger *slog.Logger
}

// NewStoreService is the constructor for storeService. The store starts logged out with no posts.
func NewStoreService(params StoreServiceParams) usecase.StoreUsecase {
	rewards := entity.DefaultRewards()
	if params.Config != nil && len(params.Config.Rewards) > 0 {
		rewards = slices.Clone(params.Config.Rewards)
	}

	return &storeService{
		writer:      params.Writer,
		logger:      params.Logger,
		now:         time.Now,
		newID:       uuid.NewString,
		posts:       []entity.Post{},
		rewards:     rewards,
		subscribers: make(map[int]chan usecase.Snapshot),
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *storeService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// --- Posts ---

func (srv *storeService) AddPost(ctx context.Context, post *entity.Post) error {
	if !entity.IsValidPost(post) {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid post")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.postIndex(post.ID) >= 0 {
		return domainerrors.ErrPostAlreadyExists.Wrapf("post %s", post.ID)
	}

	srv.posts = append([]entity.Post{post.Clone()}, srv.posts...)
	srv.persistPosts(ctx)
	srv.publish()

	srv.log(ctx).Debug("Post added", slog.String("post_id", post.ID))

	return nil
}

func (srv *storeService) CreatePost(ctx context.Context, input usecase.CreatePostInput) (*entity.Post, error) {
	if input.IsEvent && input.EventDate == nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("event posts need an event date")
	}

	author := strings.TrimSpace(input.Author)
	if author == "" {
		author = srv.currentUsernameOr(anonymousAuthor)
	}

	post := &entity.Post{
		ID:           srv.newID(),
		Organization: strings.TrimSpace(input.Organization),
		Author:       author,
		Heading:      strings.TrimSpace(input.Heading),
		Body:         strings.TrimSpace(input.Body),
		IsEvent:      input.IsEvent,
		CreatedAt:    srv.now(),
		Likes:        0,
		Comments:     []entity.Comment{},
	}
	if input.IsEvent {
		eventDate := *input.EventDate
		post.EventDate = &eventDate
	}

	if err := srv.AddPost(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (srv *storeService) UpdatePost(ctx context.Context, post *entity.Post) error {
	if !entity.IsValidPost(post) {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid post")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	idx := srv.postIndex(post.ID)
	if idx < 0 {
		return domainerrors.ErrPostNotFound.Wrapf("post %s", post.ID)
	}

	srv.posts[idx] = post.Clone()
	srv.persistPosts(ctx)
	srv.publish()

	return nil
}

// DeletePost is idempotent: deleting an unknown ID still rewrites the posts snapshot.
func (srv *storeService) DeletePost(ctx context.Context, postID string) error {
	if postID == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("post id is required")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.posts = slices.DeleteFunc(srv.posts, func(p entity.Post) bool { return p.ID == postID })
	srv.persistPosts(ctx)
	srv.publish()

	return nil
}

// --- Likes ---

// LikePost changes the post and the current user together.
func (srv *storeService) LikePost(ctx context.Context, postID string) error {
	if postID == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("post id is required")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.currentUser == nil {
		return domainerrors.ErrNotLoggedIn.WrapMessage("like requires a logged in user")
	}
	if srv.currentUser.HasLiked(postID) {
		return domainerrors.ErrAlreadyLiked.Wrapf("post %s", postID)
	}
	idx := srv.postIndex(postID)
	if idx < 0 {
		return domainerrors.ErrPostNotFound.Wrapf("post %s", postID)
	}

	srv.posts[idx].Likes++
	srv.currentUser.RewardPoints++
	srv.currentUser.LikedPosts = append(srv.currentUser.LikedPosts, postID)

	srv.persistPosts(ctx)
	srv.persistUser(ctx)
	srv.publish()

	srv.log(ctx).Debug("Post liked",
		slog.String("post_id", postID),
		slog.Int("likes", srv.posts[idx].Likes),
		slog.Int("reward_points", srv.currentUser.RewardPoints),
	)

	return nil
}

// UnlikePost reverses LikePost; counters never drop below zero.
func (srv *storeService) UnlikePost(ctx context.Context, postID string) error {
	if postID == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("post id is required")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.currentUser == nil {
		return domainerrors.ErrNotLoggedIn.WrapMessage("unlike requires a logged in user")
	}
	if !srv.currentUser.HasLiked(postID) {
		return domainerrors.ErrNotLiked.Wrapf("post %s", postID)
	}
	idx := srv.postIndex(postID)
	if idx < 0 {
		return domainerrors.ErrPostNotFound.Wrapf("post %s", postID)
	}

	srv.posts[idx].Likes = max(srv.posts[idx].Likes-1, 0)
	srv.currentUser.RewardPoints = max(srv.currentUser.RewardPoints-1, 0)
	srv.currentUser.LikedPosts = slices.DeleteFunc(srv.currentUser.LikedPosts, func(id string) bool { return id == postID })

	srv.persistPosts(ctx)
	srv.persistUser(ctx)
	srv.publish()

	return nil
}

// --- Comments ---

func (srv *storeService) AddComment(ctx context.Context, postID string, comment *entity.Comment) error {
	if postID == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("post id is required")
	}
	if !entity.IsValidComment(comment) {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid comment")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	idx := srv.postIndex(postID)
	if idx < 0 {
		return domainerrors.ErrPostNotFound.Wrapf("post %s", postID)
	}
	post := &srv.posts[idx]
	if post.CommentIndex(comment.ID) >= 0 {
		return domainerrors.ErrCommentAlreadyExists.Wrapf("comment %s on post %s", comment.ID, postID)
	}

	// Clone before appending so earlier snapshots never share the backing array.
	post.Comments = append(slices.Clone(post.Comments), *comment)
	srv.persistPosts(ctx)
	srv.publish()

	return nil
}

func (srv *storeService) CreateComment(ctx context.Context, postID, content string) (*entity.Comment, error) {
	comment := &entity.Comment{
		ID:        srv.newID(),
		Author:    srv.currentUsernameOr(guestAuthor),
		Content:   strings.TrimSpace(content),
		CreatedAt: srv.now(),
	}

	if err := srv.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (srv *storeService) UpdateComment(ctx context.Context, postID string, comment *entity.Comment) error {
	if postID == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("post id is required")
	}
	if !entity.IsValidComment(comment) {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid comment")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	idx := srv.postIndex(postID)
	if idx < 0 {
		return domainerrors.ErrPostNotFound.Wrapf("post %s", postID)
	}
	post := &srv.posts[idx]
	commentIdx := post.CommentIndex(comment.ID)
	if commentIdx < 0 {
		return domainerrors.ErrCommentNotFound.Wrapf("comment %s on post %s", comment.ID, postID)
	}

	comments := slices.Clone(post.Comments)
	comments[commentIdx] = *comment
	post.Comments = comments
	srv.persistPosts(ctx)
	srv.publish()

	return nil
}

// DeleteComment is idempotent: an unknown post or comment leaves the posts unchanged.
func (srv *storeService) DeleteComment(ctx context.Context, postID, commentID string) error {
	if postID == "" || commentID == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("post id and comment id are required")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	if idx := srv.postIndex(postID); idx >= 0 {
		post := &srv.posts[idx]
		post.Comments = slices.DeleteFunc(slices.Clone(post.Comments), func(c entity.Comment) bool { return c.ID == commentID })
	}
	srv.persistPosts(ctx)
	srv.publish()

	return nil
}

// --- User ---

// UpdateUser replaces the current user wholesale; fields are never merged.
func (srv *storeService) UpdateUser(ctx context.Context, user *entity.User) error {
	if !entity.IsValidUser(user) {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid user")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.currentUser = user.Clone()
	srv.persistUser(ctx)
	srv.publish()

	return nil
}

func (srv *storeService) SetUser(ctx context.Context, user *entity.User) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.currentUser = user.Clone()
	srv.persistUser(ctx)
	srv.publish()

	if user == nil {
		srv.log(ctx).Info("User logged out")
	} else {
		srv.log(ctx).Info("User set", slog.String("username", user.Username))
	}
}

// --- Readers ---

func (srv *storeService) CurrentUser() *entity.User {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	return srv.currentUser.Clone()
}

// Posts returns the posts in storage order, newest inserted first.
func (srv *storeService) Posts() []entity.Post {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	return entity.ClonePosts(srv.posts)
}

func (srv *storeService) Post(postID string) (*entity.Post, error) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	idx := srv.postIndex(postID)
	if idx < 0 {
		return nil, domainerrors.ErrPostNotFound.Wrapf("post %s", postID)
	}
	post := srv.posts[idx].Clone()

	return &post, nil
}

// OrderedPosts returns the posts newest first by creation time.
func (srv *storeService) OrderedPosts() []entity.Post {
	return entity.OrderByRecency(srv.Posts())
}

func (srv *storeService) Rewards() []entity.Reward {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	return slices.Clone(srv.rewards)
}

func (srv *storeService) Snapshot() usecase.Snapshot {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	return srv.snapshotLocked()
}

func (srv *storeService) EventDays() []string {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	return entity.EventDays(srv.posts)
}

func (srv *storeService) EventsOn(day string) []entity.Post {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	return entity.EventsOn(srv.posts, day)
}

// --- Restoration & subscriptions ---

func (srv *storeService) Hydrate(ctx context.Context, user *entity.User, posts []entity.Post) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.currentUser = user.Clone()
	srv.posts = entity.ClonePosts(posts)
	srv.publish()

	srv.log(ctx).Info("Store hydrated",
		slog.Bool("logged_in", user != nil),
		slog.Int("posts", len(posts)),
	)
}

func (srv *storeService) Subscribe() (<-chan usecase.Snapshot, func()) {
	ch := make(chan usecase.Snapshot, 1)

	srv.subMu.Lock()
	id := srv.nextSubID
	srv.nextSubID++
	srv.subscribers[id] = ch
	srv.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			srv.subMu.Lock()
			delete(srv.subscribers, id)
			srv.subMu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// --- helpers (callers hold mu) ---

func (srv *storeService) postIndex(postID string) int {
	return slices.IndexFunc(srv.posts, func(p entity.Post) bool { return p.ID == postID })
}

func (srv *storeService) currentUsernameOr(fallback string) string {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	if srv.currentUser != nil && srv.currentUser.Username != "" {
		return srv.currentUser.Username
	}

	return fallback
}

func (srv *storeService) snapshotLocked() usecase.Snapshot {
	return usecase.Snapshot{
		CurrentUser: srv.currentUser.Clone(),
		Posts:       entity.ClonePosts(srv.posts),
		Rewards:     slices.Clone(srv.rewards),
	}
}

func (srv *storeService) persistPosts(ctx context.Context) {
	srv.enqueue(ctx, repository.KeyPosts, srv.posts)
}

// persistUser writes the current user, or removes the key when logged out.
func (srv *storeService) persistUser(ctx context.Context) {
	if srv.currentUser == nil {
		srv.writer.Enqueue(service.PersistEffect{Key: repository.KeyUser, Remove: true})

		return
	}
	srv.enqueue(ctx, repository.KeyUser, srv.currentUser)
}

func (srv *storeService) enqueue(ctx context.Context, key string, value any) {
	encoded, err := json.Marshal(value)
	if err != nil {
		srv.log(ctx).Error("Failed to encode snapshot", slog.String("key", key), slog.Any("error", err))

		return
	}
	srv.writer.Enqueue(service.PersistEffect{Key: key, Value: string(encoded)})
}

// publish hands every subscriber the newest snapshot, replacing one it has not read yet.
func (srv *storeService) publish() {
	srv.subMu.Lock()
	defer srv.subMu.Unlock()

	if len(srv.subscribers) == 0 {
		return
	}

	for _, ch := range srv.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- srv.snapshotLocked()
	}
}
