package handler

import (
	"log/slog"
	"net/http"

	"campus/internal/delivery/http/response"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

// CommentHandler serves the comments nested under a post.
type CommentHandler struct {
	store  usecase.StoreUsecase
	logger *slog.Logger
}

// NewCommentHandler is the constructor for CommentHandler, injected by Fx.
func NewCommentHandler(store usecase.StoreUsecase, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		store:  store,
		logger: logger,
	}
}

// CreateComment appends a comment by the current user, or by "Guest" when logged out.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid comment input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.store.CreateComment(c.Request().Context(), c.Param("id"), req.Content)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, comment, "Comment added")
}

// UpdateComment replaces the text of an existing comment.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid comment input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	postID := c.Param("id")
	post, err := h.store.Post(postID)
	if err != nil {
		return errors.WithStack(err)
	}

	commentID := c.Param("commentId")
	idx := post.CommentIndex(commentID)
	if idx < 0 {
		return errors.WithStack(domainerrors.ErrCommentNotFound.Wrapf("comment %s on post %s", commentID, postID))
	}
	comment := post.Comments[idx]
	comment.Content = req.Content

	if err := h.store.UpdateComment(c.Request().Context(), postID, &comment); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, comment, "Comment updated")
}

// DeleteComment removes a comment. Unknown IDs succeed.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.store.DeleteComment(c.Request().Context(), c.Param("id"), c.Param("commentId")); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
