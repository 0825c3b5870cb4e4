package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campus/internal/delivery/http/response"
	"campus/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	orderRecent  = "recent"
	orderStorage = "storage"
)

type listPostsRequest struct {
	Order string `query:"order" validate:"omitempty,oneof=recent storage"`
}

type createPostRequest struct {
	Organization string     `json:"organization" validate:"required"`
	Author       string     `json:"author"`
	Heading      string     `json:"heading" validate:"required"`
	Body         string     `json:"body" validate:"required"`
	IsEvent      bool       `json:"isEvent"`
	EventDate    *time.Time `json:"eventDate" validate:"required_if=IsEvent true"`
}

// updatePostRequest replaces the editable fields of a post. Likes and comments are kept.
type updatePostRequest struct {
	Organization string     `json:"organization" validate:"required"`
	Heading      string     `json:"heading" validate:"required"`
	Body         string     `json:"body" validate:"required"`
	IsEvent      bool       `json:"isEvent"`
	EventDate    *time.Time `json:"eventDate" validate:"required_if=IsEvent true"`
}

// PostHandler serves posts and likes.
type PostHandler struct {
	store  usecase.StoreUsecase
	logger *slog.Logger
}

// NewPostHandler is the constructor for PostHandler, injected by Fx.
func NewPostHandler(store usecase.StoreUsecase, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		store:  store,
		logger: logger,
	}
}

// ListPosts returns posts newest first, or in storage order with ?order=storage.
func (h *PostHandler) ListPosts(c echo.Context) error {
	var req listPostsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid query")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Order == orderStorage {
		return response.Success(c, http.StatusOK, h.store.Posts(), "")
	}

	return response.Success(c, http.StatusOK, h.store.OrderedPosts(), "")
}

// CreatePost publishes a new post authored by the current user.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid post input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.store.CreatePost(c.Request().Context(), usecase.CreatePostInput{
		Organization: req.Organization,
		Author:       req.Author,
		Heading:      req.Heading,
		Body:         req.Body,
		IsEvent:      req.IsEvent,
		EventDate:    req.EventDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, post, "Post created successfully")
}

// GetPost returns a single post with its comments.
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.store.Post(c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, post, "")
}

// UpdatePost edits a post in place.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid post input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.store.Post(c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	post.Organization = req.Organization
	post.Heading = req.Heading
	post.Body = req.Body
	post.IsEvent = req.IsEvent
	post.EventDate = nil
	if req.IsEvent {
		post.EventDate = req.EventDate
	}

	if err := h.store.UpdatePost(c.Request().Context(), post); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, post, "Post updated successfully")
}

// DeletePost removes a post. Deleting an unknown post succeeds.
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.store.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// LikePost likes a post as the current user and awards a point.
func (h *PostHandler) LikePost(c echo.Context) error {
	return h.toggleLike(c, h.store.LikePost, "Post liked")
}

// UnlikePost withdraws the current user's like.
func (h *PostHandler) UnlikePost(c echo.Context) error {
	return h.toggleLike(c, h.store.UnlikePost, "Post unliked")
}

func (h *PostHandler) toggleLike(c echo.Context, apply func(ctx context.Context, postID string) error, message string) error {
	postID := c.Param("id")
	if err := apply(c.Request().Context(), postID); err != nil {
		return errors.WithStack(err)
	}

	post, err := h.store.Post(postID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"post": post,
		"user": newUserView(h.store.CurrentUser()),
	}, message)
}
