package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/inkpress/blogapi/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepo(t *testing.T) *UserFileRepository {
	t.Helper()
	repo, err := NewUserFileRepository(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return repo
}

func TestUserCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(t)
	repo.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	created, err := repo.Create(ctx, types.User{Username: "ada", Email: "ada@example.com", Password: "hash", UserType: "user"})
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000_000), created.ID)

	byName, err := repo.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, created, byName)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created, byEmail)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	_, err = repo.GetByUsername(ctx, "grace")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByEmail(ctx, "grace@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserCreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(t)

	_, err := repo.Create(ctx, types.User{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, types.User{Username: "ada", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = repo.Create(ctx, types.User{Username: "other", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	users, err := repo.file.load()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserIDsUniqueWithinSameMillisecond(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(t)
	repo.now = func() time.Time { return time.UnixMilli(1000) }

	first, err := repo.Create(ctx, types.User{Username: "a", Email: "a@example.com"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, types.User{Username: "b", Email: "b@example.com"})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), first.ID)
	assert.Equal(t, int64(1001), second.ID)
}

// Unsynchronized read-check-write let two simultaneous registrations of the
// same username both succeed. The locked update must admit exactly one.
func TestUserConcurrentRegistrationSameUsername(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo(t)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := repo.Create(ctx, types.User{
				Username: "racer",
				Email:    fmt.Sprintf("racer%d@example.com", i),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDuplicateUsername):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, dupes)

	users, err := repo.file.load()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestConcurrentBlogCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	repo, err := NewBlogFileRepository(filepath.Join(t.TempDir(), "blog.json"))
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, types.BlogPost{Title: "t"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, writers)
	seen := make(map[int]bool, writers)
	for _, post := range posts {
		assert.False(t, seen[post.ID], "duplicate id %d", post.ID)
		seen[post.ID] = true
	}
}
