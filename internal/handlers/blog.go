package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/inkpress/blogapi/internal/services"
	"github.com/inkpress/blogapi/internal/store"
	"github.com/inkpress/blogapi/types"
	"github.com/rs/zerolog"
)

const (
	maxMultipartMemory   = 32 << 20
	formFieldTitle       = "title"
	formFieldSubtitle    = "subtitle"
	formFieldCategory    = "category"
	formFieldContent     = "content"
	formFieldReadingTime = "readingTime"
	formFieldImage       = "image"
)

// BlogHandler provides HTTP handlers for blog posts.
type BlogHandler struct {
	blogService *services.BlogService
	logger      zerolog.Logger
}

// NewBlogHandler constructs a handler with the provided service.
func NewBlogHandler(blogService *services.BlogService, logger zerolog.Logger) *BlogHandler {
	return &BlogHandler{blogService: blogService, logger: logger}
}

// BlogRouter registers blog routes on the given router.
func BlogRouter(r chi.Router, blogService *services.BlogService, logger zerolog.Logger) {
	handler := NewBlogHandler(blogService, logger)

	r.Post("/api/submitBlog", handler.SubmitBlog)
	r.Get("/api/blogs", handler.ListBlogs)
	r.Route("/blogs/{blogID}", func(r chi.Router) {
		r.Get("/", handler.GetBlog)
		r.Delete("/", handler.DeleteBlog)
	})
}

// SubmitBlogResponse is returned after a successful submission.
type SubmitBlogResponse struct {
	Message string         `json:"message"`
	Blog    types.BlogPost `json:"blog"`
}

func (h *BlogHandler) SubmitBlog(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	submission := services.BlogSubmission{
		Title:       r.FormValue(formFieldTitle),
		Subtitle:    r.FormValue(formFieldSubtitle),
		Category:    r.FormValue(formFieldCategory),
		Content:     r.FormValue(formFieldContent),
		ReadingTime: r.FormValue(formFieldReadingTime),
	}

	var image *services.ImageUpload
	file, header, err := r.FormFile(formFieldImage)
	switch {
	case err == nil:
		defer file.Close()
		image = &services.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	created, err := h.blogService.Create(r.Context(), submission, image)
	if err != nil {
		if errors.Is(err, services.ErrImageRequired) {
			writeError(w, http.StatusBadRequest, "image is required")
			return
		}
		h.logger.Error().Err(err).Msg("create blog")
		writeError(w, http.StatusInternalServerError, "failed to create blog")
		return
	}

	writeJSON(w, http.StatusCreated, SubmitBlogResponse{
		Message: "Blog post created successfully",
		Blog:    created,
	})
}

func (h *BlogHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blogService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list blogs")
		writeError(w, http.StatusInternalServerError, "failed to list blogs")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *BlogHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseBlogID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.blogService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No blog is found")
			return
		}
		h.logger.Error().Err(err).Int("blog_id", id).Msg("get blog")
		writeError(w, http.StatusInternalServerError, "failed to fetch blog")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *BlogHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseBlogID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.blogService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Blog not found")
			return
		}
		h.logger.Error().Err(err).Int("blog_id", id).Msg("delete blog")
		writeError(w, http.StatusInternalServerError, "failed to delete blog")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Blog has been successfully deleted"))
}

func parseBlogID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "blogID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid blog id")
	}
	return id, nil
}
