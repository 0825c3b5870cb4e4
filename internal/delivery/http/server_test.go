package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campus/config"
	deliverycontext "campus/internal/delivery/context"
	"campus/internal/delivery/http/response"
	"campus/internal/delivery/http/router"
	"campus/internal/delivery/http/router/handler"
	"campus/internal/infra/auth"
	"campus/internal/infra/persistence/memory"
	"campus/internal/infra/persistence/writer"
	"campus/internal/usecase/impl"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	echo *echo.Echo
}

func newAPIFixture(t *testing.T, mutate func(cfg *config.Config)) *apiFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.HTTP.AllowStorageClear = true
	if mutate != nil {
		mutate(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := memory.NewKVStore()
	w := writer.New(kv, logger)
	t.Cleanup(func() { _ = w.Close(context.Background()) })

	store := impl.NewStoreService(impl.StoreServiceParams{Writer: w, Config: cfg, Logger: logger})
	session := impl.NewSessionService(impl.SessionServiceParams{
		Store:  store,
		KV:     kv,
		Writer: w,
		Hasher: auth.NewPlainHasher(),
		Config: cfg,
		Logger: logger,
	})

	routerParams := router.RouterParams{
		Config:         cfg,
		AuthHandler:    handler.NewAuthHandler(session, logger),
		UserHandler:    handler.NewUserHandler(store, logger),
		PostHandler:    handler.NewPostHandler(store, logger),
		CommentHandler: handler.NewCommentHandler(store, logger),
		EventHandler:   handler.NewEventHandler(store, logger),
		RewardHandler:  handler.NewRewardHandler(store, logger),
		StorageHandler: handler.NewStorageHandler(session, logger),
		StreamHandler:  handler.NewStreamHandler(store, logger),
	}

	return &apiFixture{echo: NewEcho(cfg, logger, routerParams)}
}

type envelope struct {
	response.Response
	Data json.RawMessage `json:"data"`
}

func (f *apiFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}

	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))

	return out
}

const signupBody = `{"username":"alice","email":"alice@campus.edu","password":"secret1"}`

func TestServer_Health(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec, env := f.do(t, nethttp.MethodGet, "/health", "")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, rec.Header().Get(deliverycontext.HeaderXRequestID))
}

func TestServer_SignupHidesPassword(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec, env := f.do(t, nethttp.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	data := decodeData[map[string]any](t, env)
	assert.Equal(t, "alice", data["username"])
	assert.NotContains(t, data, "password")

	rec, env = f.do(t, nethttp.MethodPost, "/auth/signup", signupBody)
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "USER_ALREADY_EXISTS", env.Error.Code)

	rec, env = f.do(t, nethttp.MethodPost, "/auth/signup", `{"username":"bob","email":"bob@campus.edu","password":"123"}`)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestServer_LoginLogout(t *testing.T) {
	f := newAPIFixture(t, nil)

	f.do(t, nethttp.MethodPost, "/auth/signup", signupBody)
	rec, _ := f.do(t, nethttp.MethodPost, "/auth/logout", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec, env := f.do(t, nethttp.MethodGet, "/me", "")
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NOT_LOGGED_IN", env.Error.Code)

	rec, env = f.do(t, nethttp.MethodPost, "/auth/login", `{"identifier":"alice@campus.edu","password":"nope!!"}`)
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	rec, _ = f.do(t, nethttp.MethodPost, "/auth/login", `{"identifier":"alice@campus.edu","password":"secret1"}`)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec, env = f.do(t, nethttp.MethodPut, "/me", `{"firstName":"Alice","department":"Physics"}`)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	profile := decodeData[handler.UserView](t, env)
	assert.Equal(t, "Alice", profile.FirstName)
	assert.Equal(t, "alice@campus.edu", profile.Email)

	rec, env = f.do(t, nethttp.MethodPut, "/me", `{"email":"not-an-email"}`)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestServer_PostLikeCommentFlow(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec, env := f.do(t, nethttp.MethodPost, "/posts", `{"organization":"Chess","heading":"Open night","body":"All welcome"}`)
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	anonymous := decodeData[map[string]any](t, env)
	assert.Equal(t, "Anonymous", anonymous["author"])
	postID, _ := anonymous["id"].(string)
	require.NotEmpty(t, postID)

	rec, env = f.do(t, nethttp.MethodPost, "/posts/"+postID+"/like", "")
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NOT_LOGGED_IN", env.Error.Code)

	f.do(t, nethttp.MethodPost, "/auth/signup", signupBody)

	rec, _ = f.do(t, nethttp.MethodPost, "/posts/"+postID+"/like", "")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())

	rec, env = f.do(t, nethttp.MethodPost, "/posts/"+postID+"/like", "")
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_LIKED", env.Error.Code)

	rec, env = f.do(t, nethttp.MethodGet, "/rewards", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	rewards := decodeData[map[string]any](t, env)
	assert.EqualValues(t, 1, rewards["points"])

	rec, env = f.do(t, nethttp.MethodPost, "/posts/"+postID+"/comments", `{"content":"Count me in"}`)
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	comment := decodeData[map[string]any](t, env)
	assert.Equal(t, "alice", comment["author"])
	commentID, _ := comment["id"].(string)

	rec, _ = f.do(t, nethttp.MethodPut, "/posts/"+postID+"/comments/"+commentID, `{"content":"Edited"}`)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec, env = f.do(t, nethttp.MethodPut, "/posts/"+postID+"/comments/unknown", `{"content":"Edited"}`)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "COMMENT_NOT_FOUND", env.Error.Code)

	rec, env = f.do(t, nethttp.MethodGet, "/posts/"+postID, "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	post := decodeData[map[string]any](t, env)
	assert.EqualValues(t, 1, post["likes"])
	comments, _ := post["comments"].([]any)
	require.Len(t, comments, 1)

	rec, _ = f.do(t, nethttp.MethodDelete, "/posts/"+postID+"/comments/"+commentID, "")
	assert.Equal(t, nethttp.StatusNoContent, rec.Code)

	rec, _ = f.do(t, nethttp.MethodDelete, "/posts/"+postID+"/like", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec, _ = f.do(t, nethttp.MethodDelete, "/posts/"+postID, "")
	assert.Equal(t, nethttp.StatusNoContent, rec.Code)

	rec, env = f.do(t, nethttp.MethodGet, "/posts/"+postID, "")
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "POST_NOT_FOUND", env.Error.Code)
}

func TestServer_PostValidation(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec, env := f.do(t, nethttp.MethodPost, "/posts", `{"organization":"Chess","body":"no heading"}`)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rec, env = f.do(t, nethttp.MethodPost, "/posts", `{"organization":"Chess","heading":"Cup","body":"b","isEvent":true}`)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rec, env = f.do(t, nethttp.MethodPost, "/posts", `{"organization":`)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	rec, _ = f.do(t, nethttp.MethodGet, "/posts?order=sideways", "")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestServer_Events(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec, _ := f.do(t, nethttp.MethodPost, "/posts",
		`{"organization":"Chess","heading":"Cup","body":"b","isEvent":true,"eventDate":"2030-03-14T18:00:00.000Z"}`)
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	rec, env := f.do(t, nethttp.MethodGet, "/events/days", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	days := decodeData[[]map[string]string](t, env)
	require.Len(t, days, 1)
	assert.Equal(t, "2030-03-14", days[0]["date"])
	assert.Equal(t, "upcoming", days[0]["phase"])

	rec, env = f.do(t, nethttp.MethodGet, "/events?date=2030-03-14", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	day := decodeData[map[string]any](t, env)
	events, _ := day["events"].([]any)
	assert.Len(t, events, 1)

	rec, env = f.do(t, nethttp.MethodGet, "/events?date=14-03-2030", "")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestServer_StorageClear(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.do(t, nethttp.MethodPost, "/auth/signup", signupBody)

	rec, _ := f.do(t, nethttp.MethodDelete, "/storage", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec, _ = f.do(t, nethttp.MethodGet, "/me", "")
	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)

	// The catalog is gone too, so the same account can sign up again.
	rec, _ = f.do(t, nethttp.MethodPost, "/auth/signup", signupBody)
	assert.Equal(t, nethttp.StatusCreated, rec.Code)

	disabled := newAPIFixture(t, func(cfg *config.Config) { cfg.HTTP.AllowStorageClear = false })
	rec, _ = disabled.do(t, nethttp.MethodDelete, "/storage", "")
	assert.NotEqual(t, nethttp.StatusOK, rec.Code)
}

func TestServer_RateLimit(t *testing.T) {
	f := newAPIFixture(t, func(cfg *config.Config) {
		cfg.HTTP.RateLimit = 0.001
		cfg.HTTP.RateBurst = 1
	})

	rec, _ := f.do(t, nethttp.MethodGet, "/posts", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec, env := f.do(t, nethttp.MethodGet, "/posts", "")
	assert.Equal(t, nethttp.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "HTTP_ERROR", env.Error.Code)

	rec, _ = f.do(t, nethttp.MethodGet, "/health", "")
	assert.Equal(t, nethttp.StatusOK, rec.Code, "health is never limited")
}

func TestServer_SnapshotStream(t *testing.T) {
	f := newAPIFixture(t, nil)
	srv := httptest.NewServer(f.echo)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	read := func() handler.SnapshotView {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

		var msg struct {
			Type string               `json:"type"`
			Data handler.SnapshotView `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "snapshot", msg.Type)

		return msg.Data
	}

	initial := read()
	assert.Nil(t, initial.CurrentUser)
	assert.Empty(t, initial.Posts)
	assert.Len(t, initial.Rewards, 2)

	resp, err := nethttp.Post(srv.URL+"/posts", echo.MIMEApplicationJSON,
		strings.NewReader(`{"organization":"Chess","heading":"Open night","body":"All welcome"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	updated := read()
	assert.Len(t, updated.Posts, 1)
}
