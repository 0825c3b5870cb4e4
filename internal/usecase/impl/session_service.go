package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"

	"campus/config"
	deliverycontext "campus/internal/delivery/context"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/repository"
	"campus/internal/domain/service"
	"campus/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	store  usecase.StoreUsecase
	kv     repository.KVStore
	writer service.SnapshotWriter
	hasher service.PasswordHasher
	logger *slog.Logger

	minUsernameLength int
	minPasswordLength int

	// catalogMu serializes read-modify-write of the users catalog.
	catalogMu sync.Mutex
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	Store  usecase.StoreUsecase
	KV     repository.KVStore
	Writer service.SnapshotWriter
	Hasher service.PasswordHasher
	Config *config.Config
	Logger *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	srv := &sessionService{
		store:             params.Store,
		kv:                params.KV,
		writer:            params.Writer,
		hasher:            params.Hasher,
		logger:            params.Logger,
		minUsernameLength: 3,
		minPasswordLength: 6,
	}
	if params.Config != nil {
		if params.Config.Auth.MinUsernameLength > 0 {
			srv.minUsernameLength = params.Config.Auth.MinUsernameLength
		}
		if params.Config.Auth.MinPasswordLength > 0 {
			srv.minPasswordLength = params.Config.Auth.MinPasswordLength
		}
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup registers a new account in the device catalog and logs it in.
func (srv *sessionService) Signup(ctx context.Context, input usecase.SignupInput) (*entity.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if err := srv.validateSignup(username, email, input.Password); err != nil {
		return nil, err
	}

	srv.catalogMu.Lock()
	defer srv.catalogMu.Unlock()

	users, err := srv.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	if slices.ContainsFunc(users, func(u entity.User) bool {
		return u.Username == username || u.Email == email
	}) {
		return nil, domainerrors.ErrUserAlreadyExists.Wrapf("signup %s", username)
	}

	stored, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := entity.User{
		Username:     username,
		Email:        email,
		Password:     stored,
		RewardPoints: 0,
		LikedPosts:   []string{},
	}

	if err := srv.saveCatalog(ctx, append(users, user)); err != nil {
		return nil, err
	}

	srv.store.SetUser(ctx, &user)
	srv.log(ctx).Info("User signed up", slog.String("username", username))

	return user.Clone(), nil
}

func (srv *sessionService) validateSignup(username, email, password string) error {
	switch {
	case username == "" || email == "" || password == "":
		return domainerrors.ErrValidationFailed.WrapMessage("username, email and password are required")
	case len([]rune(username)) < srv.minUsernameLength:
		return domainerrors.ErrValidationFailed.Wrapf("username must be at least %d characters", srv.minUsernameLength)
	case !emailPattern.MatchString(email):
		return domainerrors.ErrValidationFailed.WrapMessage("email address is not valid")
	case len([]rune(password)) < srv.minPasswordLength:
		return domainerrors.ErrValidationFailed.Wrapf("password must be at least %d characters", srv.minPasswordLength)
	}

	return nil
}

// Login matches the identifier against both username and email. The error never says which part was wrong.
func (srv *sessionService) Login(ctx context.Context, input usecase.LoginInput) (*entity.User, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("identifier and password are required")
	}

	srv.catalogMu.Lock()
	users, err := srv.loadCatalog(ctx)
	srv.catalogMu.Unlock()
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(users, func(u entity.User) bool {
		return (u.Username == identifier || u.Email == identifier) && srv.hasher.Check(input.Password, u.Password)
	})
	if idx < 0 {
		srv.log(ctx).Info("Login rejected")

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	user := users[idx]
	user.Normalize()
	srv.store.SetUser(ctx, &user)
	srv.log(ctx).Info("User logged in", slog.String("username", user.Username))

	return user.Clone(), nil
}

func (srv *sessionService) Logout(ctx context.Context) {
	srv.store.SetUser(ctx, nil)
}

// Restore loads the persisted session. Missing, unreadable or invalid records are skipped, never fatal.
func (srv *sessionService) Restore(ctx context.Context) error {
	logger := srv.log(ctx)

	var user *entity.User
	if raw, ok := srv.read(ctx, repository.KeyUser); ok {
		var decoded entity.User
		switch err := json.Unmarshal([]byte(raw), &decoded); {
		case err != nil:
			logger.Warn("Discarding undecodable stored user", slog.Any("error", err))
		case !entity.IsValidUser(&decoded):
			logger.Warn("Discarding invalid stored user")
		default:
			decoded.Normalize()
			user = &decoded
		}
	}

	posts := []entity.Post{}
	if raw, ok := srv.read(ctx, repository.KeyPosts); ok {
		var decoded []entity.Post
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			logger.Warn("Discarding undecodable stored posts", slog.Any("error", err))
		} else {
			posts = validPosts(ctx, logger, decoded)
		}
	}

	srv.store.Hydrate(ctx, user, posts)

	return nil
}

// validPosts keeps the well-formed posts. A missing comments list is read as empty.
func validPosts(ctx context.Context, logger *slog.Logger, decoded []entity.Post) []entity.Post {
	posts := make([]entity.Post, 0, len(decoded))
	seen := make(map[string]struct{}, len(decoded))

	for i := range decoded {
		post := decoded[i]
		if post.Comments == nil {
			post.Comments = []entity.Comment{}
		}
		if !entity.IsValidPost(&post) {
			logger.WarnContext(ctx, "Discarding invalid stored post", slog.Int("index", i), slog.String("post_id", post.ID))

			continue
		}
		if _, dup := seen[post.ID]; dup {
			logger.WarnContext(ctx, "Discarding duplicate stored post", slog.String("post_id", post.ID))

			continue
		}
		seen[post.ID] = struct{}{}
		posts = append(posts, post)
	}

	return posts
}

// read returns the stored value for key. Absence and read failures both report ok=false.
func (srv *sessionService) read(ctx context.Context, key string) (string, bool) {
	raw, err := srv.kv.Get(ctx, key)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return "", false
	}
	if err != nil {
		srv.log(ctx).Warn("Failed to read stored value", slog.String("key", key), slog.Any("error", err))

		return "", false
	}

	return raw, true
}

// ClearStorage resets the store first so no later write resurrects cleared data.
func (srv *sessionService) ClearStorage(ctx context.Context) error {
	srv.store.Hydrate(ctx, nil, nil)

	if err := srv.writer.Flush(ctx); err != nil {
		return errors.Wrap(err, "failed to flush pending writes")
	}

	srv.catalogMu.Lock()
	defer srv.catalogMu.Unlock()

	if err := srv.kv.Clear(ctx); err != nil {
		return err
	}

	srv.log(ctx).Info("Storage cleared")

	return nil
}

func (srv *sessionService) loadCatalog(ctx context.Context) ([]entity.User, error) {
	raw, err := srv.kv.Get(ctx, repository.KeyUsers)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return []entity.User{}, nil
	}
	if err != nil {
		return nil, err
	}

	var users []entity.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, domainerrors.NewPersistenceError(err, "decode users catalog")
	}

	return users, nil
}

func (srv *sessionService) saveCatalog(ctx context.Context, users []entity.User) error {
	encoded, err := json.Marshal(users)
	if err != nil {
		return errors.Wrap(err, "failed to encode users catalog")
	}

	return srv.kv.Set(ctx, repository.KeyUsers, string(encoded))
}
