package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/inkpress/blogapi/config"
	"github.com/inkpress/blogapi/internal/auth"
	"github.com/inkpress/blogapi/internal/db"
	"github.com/inkpress/blogapi/internal/handlers"
	"github.com/inkpress/blogapi/internal/mq"
	"github.com/inkpress/blogapi/internal/services"
	"github.com/inkpress/blogapi/internal/storage"
	"github.com/inkpress/blogapi/internal/store"
	"github.com/rs/zerolog"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	closers    []io.Closer
	logger     zerolog.Logger
}

// New wires stores, storage, the event bus and handlers from cfg.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	s := &Server{logger: logger}
	ok := false
	defer func() {
		if !ok {
			s.closeResources()
		}
	}()

	blogRepo, userRepo, err := s.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	images, err := s.openImageStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := s.openEventBus(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blogService := services.NewBlogService(blogRepo, images, publisher, cfg.MQChannel, logger)
	userService := services.NewUserService(userRepo, publisher, cfg.MQChannel, logger)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	google := auth.NewGoogleProvider(cfg.Google)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CorsAllowedOrigins,
			AllowedMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodPatch,
				http.MethodPut,
				http.MethodDelete,
				http.MethodOptions,
			},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.BlogRouter(router, blogService, logger)
	handlers.AuthRouter(router, handlers.NewAuthHandler(userService, tokens, google, cfg.FrontendURL, logger))
	handlers.ImageRouter(router, images, logger)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.router = router
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	ok = true
	return s, nil
}

func (s *Server) openStores(ctx context.Context, cfg config.Config) (services.BlogRepository, services.UserRepository, error) {
	switch cfg.StoreBackend {
	case config.StoreFile, "":
		blogRepo, err := store.NewBlogFileRepository(cfg.BlogFile)
		if err != nil {
			return nil, nil, err
		}
		userRepo, err := store.NewUserFileRepository(cfg.UsersFile)
		if err != nil {
			return nil, nil, err
		}
		return blogRepo, userRepo, nil
	case config.StorePostgres:
		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		s.db = dbConn
		return store.NewBlogRepository(dbConn), store.NewUserRepository(dbConn), nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func (s *Server) openImageStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	var backend storage.ObjectStorage
	switch cfg.ImageStorage {
	case config.ImageStorageLocal, "":
		client, err := storage.NewLocalClient(cfg.ImageDir)
		if err != nil {
			return nil, err
		}
		backend = client
	case config.ImageStorageMinio:
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	case config.ImageStorageGCS:
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown image storage %q", cfg.ImageStorage)
	}

	images := storage.NewStorage(backend)
	s.closers = append(s.closers, images)
	if err := images.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("prepare image storage: %w", err)
	}
	return images, nil
}

func (s *Server) openEventBus(ctx context.Context, cfg config.Config) (services.EventPublisher, error) {
	backend, err := NewEventBackend(ctx, cfg)
	if err != nil || backend == nil {
		return nil, err
	}
	bus := mq.New(backend)
	s.closers = append(s.closers, bus)
	return bus, nil
}

// NewEventBackend builds the configured broker backend, or nil when events are disabled.
func NewEventBackend(ctx context.Context, cfg config.Config) (mq.Backend, error) {
	switch cfg.MQBackend {
	case config.MQNone, "":
		return nil, nil
	case config.MQRabbitMQ:
		return mq.NewRabbitMQClient(cfg.RabbitMQ)
	case config.MQPubSub:
		return mq.NewPubSubClient(ctx, cfg.PubSub)
	case config.MQKafka:
		return mq.NewKafkaClient(cfg.Kafka)
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQBackend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("listening")
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and releases backends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeResources()
	return err
}

func (s *Server) closeResources() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("close backend")
		}
	}
	s.closers = nil
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}
