package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkpress/blogapi/internal/store"
	"github.com/inkpress/blogapi/types"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var (
	// ErrUserNotFound is returned when authenticating an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo   UserRepository
	events eventEmitter
	logger zerolog.Logger
}

func NewUserService(repo UserRepository, publisher EventPublisher, channel string, logger zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		events: eventEmitter{publisher: publisher, channel: channel, logger: logger},
		logger: logger,
	}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Register hashes the password and creates the user. Duplicate usernames and
// emails surface as store.ErrDuplicateUsername and store.ErrDuplicateEmail.
func (s *UserService) Register(ctx context.Context, username, email, password, userType string) (types.User, error) {
	if strings.TrimSpace(userType) == "" {
		userType = types.DefaultUserType
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		UserType: userType,
	})
	if err != nil {
		return types.User{}, err
	}

	public := user.Public()
	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	s.events.emit(ctx, types.Event{Type: types.EventUserRegistered, User: &public})
	return user, nil
}

// Authenticate verifies a username and plaintext password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}
