package impl

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"campus/config"
	"campus/internal/domain/entity"
	"campus/internal/domain/service"
	"campus/internal/infra/persistence/memory"
	"campus/internal/infra/persistence/writer"
	"campus/internal/usecase"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	return cfg
}

type storeFixture struct {
	store  *storeService
	kv     *memory.KVStore
	writer service.SnapshotWriter
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()

	kv := memory.NewKVStore()
	w := writer.New(kv, newDiscardLogger())
	t.Cleanup(func() { _ = w.Close(context.Background()) })

	store, ok := NewStoreService(StoreServiceParams{
		Writer: w,
		Config: newTestConfig(),
		Logger: newDiscardLogger(),
	}).(*storeService)
	require.True(t, ok)

	ids := 0
	store.now = func() time.Time { return testNow }
	store.newID = func() string {
		ids++

		return "id-" + strconv.Itoa(ids)
	}

	return &storeFixture{store: store, kv: kv, writer: w}
}

// flushed waits for pending writes and returns the durable key/value state.
func (f *storeFixture) flushed(t *testing.T) map[string]string {
	t.Helper()
	require.NoError(t, f.writer.Flush(context.Background()))

	return f.kv.Dump()
}

func (f *storeFixture) storedPosts(t *testing.T) []entity.Post {
	t.Helper()

	var posts []entity.Post
	require.NoError(t, json.Unmarshal([]byte(f.flushed(t)["posts"]), &posts))

	return posts
}

func (f *storeFixture) storedUser(t *testing.T) *entity.User {
	t.Helper()

	raw, ok := f.flushed(t)["user"]
	if !ok {
		return nil
	}

	var user entity.User
	require.NoError(t, json.Unmarshal([]byte(raw), &user))

	return &user
}

func newPost(id string, createdAt time.Time) *entity.Post {
	return &entity.Post{
		ID:           id,
		Organization: "Robotics Club",
		Author:       "alice",
		Heading:      "Heading " + id,
		Body:         "Body " + id,
		CreatedAt:    createdAt,
		Comments:     []entity.Comment{},
	}
}

func newComment(id string) *entity.Comment {
	return &entity.Comment{
		ID:        id,
		Author:    "bob",
		Content:   "Nice one",
		CreatedAt: testNow,
	}
}

func newUser(username string) *entity.User {
	return &entity.User{
		Username:   username,
		Email:      username + "@campus.edu",
		Password:   "secret1",
		LikedPosts: []string{},
	}
}

var _ usecase.StoreUsecase = (*storeService)(nil)
