package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/inkpress/blogapi/types"
	"github.com/rs/zerolog"
)

// ErrImageRequired is returned when a submission carries no image.
var ErrImageRequired = errors.New("image is required")

// BlogRepository defines persistence operations for blog posts.
type BlogRepository interface {
	List(ctx context.Context) ([]types.BlogPost, error)
	Get(ctx context.Context, id int) (types.BlogPost, error)
	Create(ctx context.Context, post types.BlogPost) (types.BlogPost, error)
	Delete(ctx context.Context, id int) error
}

// ImageStore persists uploaded images by key.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// ImageUpload is a single uploaded image attachment.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// BlogSubmission holds the text fields of a new post.
type BlogSubmission struct {
	Title       string
	Subtitle    string
	Category    string
	Content     string
	ReadingTime string
}

// BlogService encapsulates blog use-cases.
type BlogService struct {
	repo   BlogRepository
	images ImageStore
	events eventEmitter
	logger zerolog.Logger
	now    func() time.Time
}

func NewBlogService(repo BlogRepository, images ImageStore, publisher EventPublisher, channel string, logger zerolog.Logger) *BlogService {
	return &BlogService{
		repo:   repo,
		images: images,
		events: eventEmitter{publisher: publisher, channel: channel, logger: logger},
		logger: logger,
		now:    time.Now,
	}
}

func (s *BlogService) List(ctx context.Context) ([]types.BlogPost, error) {
	return s.repo.List(ctx)
}

func (s *BlogService) Get(ctx context.Context, id int) (types.BlogPost, error) {
	return s.repo.Get(ctx, id)
}

// Create stores the image as <epoch-millis>_<original-name> and records the
// post referencing it. Field values are stored as submitted.
func (s *BlogService) Create(ctx context.Context, sub BlogSubmission, image *ImageUpload) (types.BlogPost, error) {
	if image == nil || image.Content == nil {
		return types.BlogPost{}, ErrImageRequired
	}

	key := ImageKey(s.now(), image.Filename)
	if err := s.images.Put(ctx, key, image.Content, image.Size, image.ContentType); err != nil {
		return types.BlogPost{}, fmt.Errorf("store image: %w", err)
	}

	created, err := s.repo.Create(ctx, types.BlogPost{
		Title:       sub.Title,
		Subtitle:    sub.Subtitle,
		Category:    sub.Category,
		Content:     sub.Content,
		ReadingTime: types.ReadingTime(sub.ReadingTime),
		ImagePath:   key,
	})
	if err != nil {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("image", key).Msg("remove orphaned image")
		}
		return types.BlogPost{}, err
	}

	s.logger.Info().Int("blog_id", created.ID).Str("image", key).Msg("blog created")
	s.events.emit(ctx, types.Event{Type: types.EventBlogCreated, BlogID: created.ID, Blog: &created})
	return created, nil
}

func (s *BlogService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int("blog_id", id).Msg("blog deleted")
	s.events.emit(ctx, types.Event{Type: types.EventBlogDeleted, BlogID: id})
	return nil
}

// ImageKey names a stored upload after the upload time and the base name of
// the original file. Uploads sharing a millisecond and a name collide.
func ImageKey(at time.Time, filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		name = "image"
	}
	return fmt.Sprintf("%d_%s", at.UnixMilli(), name)
}
