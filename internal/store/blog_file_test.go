package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/inkpress/blogapi/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlogRepo(t *testing.T, contents string) (*BlogFileRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog.json")
	if contents != "" {
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	}
	repo, err := NewBlogFileRepository(path)
	require.NoError(t, err)
	return repo, path
}

func TestBlogCreateAssignsFirstID(t *testing.T) {
	repo, _ := newBlogRepo(t, "")

	created, err := repo.Create(context.Background(), types.BlogPost{Title: "first"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}

func TestBlogCreateUsesMaxPlusOne(t *testing.T) {
	repo, _ := newBlogRepo(t, `[{"id": 1, "title": "a"}, {"id": 7, "title": "b"}, {"id": 3, "title": "c"}]`)

	created, err := repo.Create(context.Background(), types.BlogPost{Title: "d"})
	require.NoError(t, err)
	assert.Equal(t, 8, created.ID, "next id must be max+1, not count+1")
}

func TestBlogCreateAfterDeleteDoesNotReuseIDs(t *testing.T) {
	ctx := context.Background()
	repo, _ := newBlogRepo(t, "")

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, types.BlogPost{Title: "post"})
		require.NoError(t, err)
	}
	require.NoError(t, repo.Delete(ctx, 2))

	created, err := repo.Create(ctx, types.BlogPost{Title: "post"})
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
}

func TestBlogCreateThenListPreservesFields(t *testing.T) {
	ctx := context.Background()
	repo, _ := newBlogRepo(t, "")

	post := types.BlogPost{
		Title:       "Hello",
		Subtitle:    "  spaced  subtitle ",
		Category:    "go",
		Content:     "line one\nline two <b>html</b>",
		ReadingTime: "5 min",
		ImagePath:   "1700000000000_cover.png",
	}
	created, err := repo.Create(ctx, post)
	require.NoError(t, err)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	post.ID = created.ID
	assert.Equal(t, post, posts[0])
}

func TestBlogListKeepsInsertionOrder(t *testing.T) {
	repo, _ := newBlogRepo(t, `[{"id": 5, "title": "x"}, {"id": 2, "title": "y"}]`)
	ctx := context.Background()

	_, err := repo.Create(ctx, types.BlogPost{Title: "z"})
	require.NoError(t, err)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []int{5, 2, 6}, []int{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestBlogGet(t *testing.T) {
	repo, _ := newBlogRepo(t, `[{"id": 1, "title": "a", "readingTime": 4}]`)

	post, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "a", post.Title)
	assert.Equal(t, types.ReadingTime("4"), post.ReadingTime)

	_, err = repo.Get(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlogDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newBlogRepo(t, `[{"id": 1, "title": "a"}, {"id": 2, "title": "b"}]`)

	require.NoError(t, repo.Delete(ctx, 1))

	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 2, posts[0].ID)
}

func TestBlogDeleteMissingLeavesFileUnchanged(t *testing.T) {
	repo, path := newBlogRepo(t, `[{"id": 1, "title": "a"}]`)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBlogListMalformedFile(t *testing.T) {
	repo, _ := newBlogRepo(t, `{not json`)

	_, err := repo.List(context.Background())
	assert.Error(t, err)

	_, err = repo.Create(context.Background(), types.BlogPost{Title: "x"})
	assert.Error(t, err)
}

func TestBlogListMissingFile(t *testing.T) {
	repo, path := newBlogRepo(t, "")
	require.NoError(t, os.Remove(path))

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewBlogFileRepositoryCreatesEmptyCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blog.json")

	repo, err := NewBlogFileRepository(path)
	require.NoError(t, err)

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
