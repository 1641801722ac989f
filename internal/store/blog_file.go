package store

import (
	"context"

	"github.com/inkpress/blogapi/types"
)

// BlogFileRepository persists blog posts in a JSON array file.
type BlogFileRepository struct {
	file *jsonFile[types.BlogPost]
}

// NewBlogFileRepository opens the blog file at path, creating an empty
// collection when the file does not exist yet.
func NewBlogFileRepository(path string) (*BlogFileRepository, error) {
	file, err := openJSONFile[types.BlogPost](path)
	if err != nil {
		return nil, err
	}
	return &BlogFileRepository{file: file}, nil
}

func (r *BlogFileRepository) List(ctx context.Context) ([]types.BlogPost, error) {
	return r.file.load()
}

func (r *BlogFileRepository) Get(ctx context.Context, id int) (types.BlogPost, error) {
	posts, err := r.file.load()
	if err != nil {
		return types.BlogPost{}, err
	}
	for _, post := range posts {
		if post.ID == id {
			return post, nil
		}
	}
	return types.BlogPost{}, ErrNotFound
}

// Create assigns the next ID (largest existing ID plus one) and appends the post.
func (r *BlogFileRepository) Create(ctx context.Context, post types.BlogPost) (types.BlogPost, error) {
	err := r.file.update(func(posts []types.BlogPost) ([]types.BlogPost, error) {
		post.ID = nextBlogID(posts)
		return append(posts, post), nil
	})
	if err != nil {
		return types.BlogPost{}, err
	}
	return post, nil
}

// Delete removes the first post with the given ID.
func (r *BlogFileRepository) Delete(ctx context.Context, id int) error {
	return r.file.update(func(posts []types.BlogPost) ([]types.BlogPost, error) {
		for i, post := range posts {
			if post.ID == id {
				return append(posts[:i], posts[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

func nextBlogID(posts []types.BlogPost) int {
	maxID := 0
	for _, post := range posts {
		if post.ID > maxID {
			maxID = post.ID
		}
	}
	return maxID + 1
}
