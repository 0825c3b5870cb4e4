package usecase

import (
	"context"

	"campus/internal/domain/entity"
)

// SignupInput defines the data required to register an account on this device.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput defines the data required to log in. Identifier matches a username or an email.
type LoginInput struct {
	Identifier string
	Password   string
}

// SessionUsecase covers account registration, login and startup restoration.
type SessionUsecase interface {
	Signup(ctx context.Context, input SignupInput) (*entity.User, error)
	Login(ctx context.Context, input LoginInput) (*entity.User, error)
	Logout(ctx context.Context)

	// Restore loads the persisted user and posts into the store.
	Restore(ctx context.Context) error

	// ClearStorage wipes every persisted key and resets the store.
	ClearStorage(ctx context.Context) error
}
