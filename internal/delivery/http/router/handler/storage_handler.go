package handler

import (
	"log/slog"
	"net/http"

	"campus/internal/delivery/http/response"
	"campus/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// StorageHandler exposes the developer reset of all persisted data.
type StorageHandler struct {
	session usecase.SessionUsecase
	logger  *slog.Logger
}

// NewStorageHandler is the constructor for StorageHandler, injected by Fx.
func NewStorageHandler(session usecase.SessionUsecase, logger *slog.Logger) *StorageHandler {
	return &StorageHandler{
		session: session,
		logger:  logger,
	}
}

// ClearStorage wipes users, the session and posts.
func (h *StorageHandler) ClearStorage(c echo.Context) error {
	if err := h.session.ClearStorage(c.Request().Context()); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Storage cleared")
}
