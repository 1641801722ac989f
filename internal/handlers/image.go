package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/inkpress/blogapi/internal/storage"
	"github.com/rs/zerolog"
)

// ImageReader reads stored images by key.
type ImageReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// ImageRouter serves uploaded blog images.
func ImageRouter(r chi.Router, images ImageReader, logger zerolog.Logger) {
	r.Get("/images/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" || name == "." || name == ".." || path.Base(name) != name {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}

		body, err := images.Get(r.Context(), name)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "image not found")
				return
			}
			logger.Error().Err(err).Str("image", name).Msg("read image")
			writeError(w, http.StatusInternalServerError, "failed to read image")
			return
		}
		defer body.Close()

		w.Header().Set("Content-Type", storage.ContentTypeFor(name))
		w.Header().Set("Cache-Control", storage.ImageCacheControl)
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, body)
	})
}
