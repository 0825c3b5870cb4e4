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

// updateProfileRequest carries the editable profile fields. Omitted fields keep their value.
type updateProfileRequest struct {
	Email      *string `json:"email" validate:"omitempty,email"`
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Image      *string `json:"image"`
	Course     *string `json:"course"`
	Year       *string `json:"year"`
	Department *string `json:"department"`
}

// UserHandler serves the current user's profile.
type UserHandler struct {
	store  usecase.StoreUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(store usecase.StoreUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		store:  store,
		logger: logger,
	}
}

// GetProfile returns the logged in user.
func (h *UserHandler) GetProfile(c echo.Context) error {
	user := h.store.CurrentUser()
	if user == nil {
		return errors.WithStack(domainerrors.ErrNotLoggedIn)
	}

	return response.Success(c, http.StatusOK, newUserView(user), "Profile retrieved successfully")
}

// UpdateProfile applies the submitted fields to the current user and saves the whole record.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user := h.store.CurrentUser()
	if user == nil {
		return errors.WithStack(domainerrors.ErrNotLoggedIn)
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&user.Email, req.Email)
	assign(&user.FirstName, req.FirstName)
	assign(&user.LastName, req.LastName)
	assign(&user.Image, req.Image)
	assign(&user.Course, req.Course)
	assign(&user.Year, req.Year)
	assign(&user.Department, req.Department)

	if err := h.store.UpdateUser(c.Request().Context(), user); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserView(user), "Profile updated successfully")
}
