package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inkpress/blogapi/internal/store"
	"github.com/inkpress/blogapi/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBlogServiceCreate(t *testing.T) {
	ctx := context.Background()
	images, dir := newLocalImages(t)
	publisher := &MockPublisher{}
	publisher.On("Publish", ctx, "blog-events", eventOfType(types.EventBlogCreated), map[string]string{"type": types.EventBlogCreated}).
		Return("msg-1", nil).Once()

	svc := NewBlogService(newFileBlogRepo(t), images, publisher, "blog-events", testLogger)
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }

	created, err := svc.Create(ctx, BlogSubmission{
		Title:       "Title",
		Subtitle:    "Sub",
		Category:    "Tech",
		Content:     "Body",
		ReadingTime: "7",
	}, &ImageUpload{Filename: "cover.png", ContentType: "image/png", Size: 3, Content: strings.NewReader("png")})
	require.NoError(t, err)

	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "1700000000123_cover.png", created.ImagePath)
	assert.Equal(t, types.ReadingTime("7"), created.ReadingTime)

	data, err := os.ReadFile(filepath.Join(dir, created.ImagePath))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	posts, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.BlogPost{created}, posts)

	publisher.AssertExpectations(t)
}

func TestBlogServiceCreateRequiresImage(t *testing.T) {
	images := &MockImageStore{}
	repo := &MockBlogRepository{}
	svc := NewBlogService(repo, images, nil, "", testLogger)

	_, err := svc.Create(context.Background(), BlogSubmission{Title: "x"}, nil)
	assert.ErrorIs(t, err, ErrImageRequired)

	images.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBlogServiceCreateRemovesImageWhenRepoFails(t *testing.T) {
	ctx := context.Background()
	images := &MockImageStore{}
	repo := &MockBlogRepository{}
	svc := NewBlogService(repo, images, nil, "", testLogger)
	svc.now = func() time.Time { return time.UnixMilli(42) }

	images.On("Put", ctx, "42_a.jpg", mock.Anything, int64(1), "image/jpeg").Return(nil)
	images.On("Delete", ctx, "42_a.jpg").Return(nil)
	repo.On("Create", ctx, mock.Anything).Return(types.BlogPost{}, errors.New("disk full"))

	_, err := svc.Create(ctx, BlogSubmission{}, &ImageUpload{Filename: "a.jpg", ContentType: "image/jpeg", Size: 1, Content: strings.NewReader("x")})
	assert.EqualError(t, err, "disk full")

	images.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestBlogServiceCreateImageFailure(t *testing.T) {
	ctx := context.Background()
	images := &MockImageStore{}
	repo := &MockBlogRepository{}
	svc := NewBlogService(repo, images, nil, "", testLogger)

	images.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))

	_, err := svc.Create(ctx, BlogSubmission{}, &ImageUpload{Filename: "a.jpg", Content: strings.NewReader("x")})
	assert.ErrorContains(t, err, "bucket gone")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBlogServiceDelete(t *testing.T) {
	ctx := context.Background()
	images, _ := newLocalImages(t)
	publisher := &MockPublisher{}
	publisher.On("Publish", ctx, "blog-events", eventOfType(types.EventBlogCreated), mock.Anything).Return("m1", nil)
	publisher.On("Publish", ctx, "blog-events", eventOfType(types.EventBlogDeleted), mock.Anything).Return("m2", nil).Once()

	svc := NewBlogService(newFileBlogRepo(t), images, publisher, "blog-events", testLogger)
	created, err := svc.Create(ctx, BlogSubmission{Title: "x"}, &ImageUpload{Filename: "x.png", Content: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	publisher.AssertExpectations(t)
}

func TestBlogServicePublishFailureDoesNotFailCreate(t *testing.T) {
	ctx := context.Background()
	images, _ := newLocalImages(t)
	publisher := &MockPublisher{}
	publisher.On("Publish", ctx, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("broker down"))

	svc := NewBlogService(newFileBlogRepo(t), images, publisher, "blog-events", testLogger)
	_, err := svc.Create(ctx, BlogSubmission{Title: "x"}, &ImageUpload{Filename: "x.png", Content: strings.NewReader("x")})
	assert.NoError(t, err)
}

func TestImageKey(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	assert.Equal(t, "1700000000000_photo.jpg", ImageKey(at, "photo.jpg"))
	assert.Equal(t, "1700000000000_photo.jpg", ImageKey(at, "../../photo.jpg"))
	assert.Equal(t, "1700000000000_photo.jpg", ImageKey(at, `C:\Users\me\photo.jpg`))
	assert.Equal(t, "1700000000000_my photo.jpg", ImageKey(at, "my photo.jpg"))
	assert.Equal(t, "1700000000000_image", ImageKey(at, ""))
}
