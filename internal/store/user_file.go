package store

import (
	"context"
	"time"

	"github.com/inkpress/blogapi/types"
)

// UserFileRepository persists users in a JSON array file.
type UserFileRepository struct {
	file *jsonFile[types.User]
	now  func() time.Time
}

// NewUserFileRepository opens the users file at path, creating an empty
// collection when the file does not exist yet.
func NewUserFileRepository(path string) (*UserFileRepository, error) {
	file, err := openJSONFile[types.User](path)
	if err != nil {
		return nil, err
	}
	return &UserFileRepository{file: file, now: time.Now}, nil
}

func (r *UserFileRepository) GetByID(ctx context.Context, id int64) (types.User, error) {
	return r.find(func(u types.User) bool { return u.ID == id })
}

func (r *UserFileRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.find(func(u types.User) bool { return u.Username == username })
}

func (r *UserFileRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return r.find(func(u types.User) bool { return u.Email == email })
}

// Create checks username and email uniqueness and appends the user in one
// locked step. The ID is the current time in milliseconds, bumped past the
// largest existing ID when two registrations land in the same millisecond.
func (r *UserFileRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	err := r.file.update(func(users []types.User) ([]types.User, error) {
		var maxID int64
		for _, existing := range users {
			if existing.Username == user.Username {
				return nil, ErrDuplicateUsername
			}
			if existing.Email == user.Email {
				return nil, ErrDuplicateEmail
			}
			if existing.ID > maxID {
				maxID = existing.ID
			}
		}
		user.ID = r.now().UnixMilli()
		if user.ID <= maxID {
			user.ID = maxID + 1
		}
		return append(users, user), nil
	})
	if err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (r *UserFileRepository) find(match func(types.User) bool) (types.User, error) {
	users, err := r.file.load()
	if err != nil {
		return types.User{}, err
	}
	for _, user := range users {
		if match(user) {
			return user, nil
		}
	}
	return types.User{}, ErrNotFound
}
