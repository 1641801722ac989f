package services

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/inkpress/blogapi/internal/storage"
	"github.com/inkpress/blogapi/internal/store"
	"github.com/inkpress/blogapi/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	args := m.Called(ctx, channel, data, attrs)
	return args.String(0), args.Error(1)
}

// MockImageStore is a mock implementation of ImageStore.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, r, size, contentType)
	return args.Error(0)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockBlogRepository is a mock implementation of BlogRepository.
type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) List(ctx context.Context) ([]types.BlogPost, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) Get(ctx context.Context, id int) (types.BlogPost, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) Create(ctx context.Context, post types.BlogPost) (types.BlogPost, error) {
	args := m.Called(ctx, post)
	return args.Get(0).(types.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newFileUserRepo(t *testing.T) *store.UserFileRepository {
	t.Helper()
	repo, err := store.NewUserFileRepository(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return repo
}

func newFileBlogRepo(t *testing.T) *store.BlogFileRepository {
	t.Helper()
	repo, err := store.NewBlogFileRepository(filepath.Join(t.TempDir(), "blog.json"))
	require.NoError(t, err)
	return repo
}

func newLocalImages(t *testing.T) (*storage.Storage, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "images")
	client, err := storage.NewLocalClient(dir)
	require.NoError(t, err)
	s := storage.NewStorage(client)
	require.NoError(t, s.EnsureBucket(context.Background()))
	return s, dir
}

func eventOfType(eventType string) any {
	return mock.MatchedBy(func(data []byte) bool {
		var event types.Event
		return json.Unmarshal(data, &event) == nil && event.Type == eventType
	})
}

var testLogger = zerolog.Nop()
