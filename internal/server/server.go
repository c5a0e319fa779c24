package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/trendai/apiserver/config"
	"github.com/trendai/apiserver/internal/db"
	"github.com/trendai/apiserver/internal/generate"
	"github.com/trendai/apiserver/internal/handlers"
	"github.com/trendai/apiserver/internal/kvstore"
	"github.com/trendai/apiserver/internal/notify"
	"github.com/trendai/apiserver/internal/services"
	"github.com/trendai/apiserver/internal/storage"
	"github.com/trendai/apiserver/internal/ws"
)

// Watched store keys pushed to websocket clients when another context
// mutates them.
var watchedKeys = []string{services.SessionKey, services.GalleryKey}

// Server wraps the HTTP server, router and the shared store.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	store      *kvstore.Store
	cancel     context.CancelFunc
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := slog.Default()

	backend, err := newKVBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(ctx, cfg)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	store := kvstore.New(backend, notifier, logger)

	var scheme services.PasswordScheme = services.PlainScheme{}
	if cfg.Auth.HashPasswords {
		scheme = services.BcryptScheme{}
	}
	latency := time.Duration(cfg.Auth.LatencyMS) * time.Millisecond
	if cfg.Auth.LatencyMS < 0 {
		latency = services.DefaultAuthLatency
	}

	authService := services.NewAuthService(store, scheme, latency, logger)
	galleryService := services.NewGalleryService(store, logger)

	provider, err := generate.NewGeminiProvider(ctx, cfg.Gemini)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	generator := generate.NewGenerator(provider)

	archive, err := newArchive(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = store.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	authMiddleware := handlers.RequireAuth(jwtSecret)
	hub := ws.NewHub()

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/trends", func(r chi.Router) {
		handlers.TrendRouter(r)
	})
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, jwtSecret)
	})
	router.Route("/generate", func(r chi.Router) {
		handlers.GenerateRouter(r, generator, authMiddleware)
	})
	router.Route("/gallery", func(r chi.Router) {
		handlers.GalleryRouter(r, galleryService, archive, authMiddleware)
	})
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	runCtx, cancel := context.WithCancel(context.Background())
	go hub.Run()
	go func() {
		if err := store.Listen(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("store listener stopped", "error", err)
		}
	}()
	for _, key := range watchedKeys {
		key := key
		first := true
		store.Subscribe(runCtx, key, func(value []byte, ok bool) {
			// The initial snapshot has no audience yet; push changes only.
			if first {
				first = false
				return
			}
			if !ok {
				value = nil
			}
			hub.Broadcast(key, value)
		})
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		store:      store,
		cancel:     cancel,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	s.cancel()
	if s.store != nil {
		_ = s.store.Close()
	}
	return s.httpServer.Close()
}

func newKVBackend(ctx context.Context, cfg config.Config) (kvstore.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.KV.Backend)) {
	case "", "sqlite":
		return kvstore.NewSQLiteBackend(cfg.KV.SQLitePath)
	case "postgres":
		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return kvstore.NewPostgresBackend(conn), nil
	case "memory":
		return kvstore.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.KV.Backend)
	}
}

func newNotifier(ctx context.Context, cfg config.Config) (*notify.Notifier, error) {
	var (
		backend notify.Backend
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Notify.Backend)) {
	case "", "memory":
		backend = notify.NewMemoryBus()
	case "rabbitmq":
		backend, err = notify.NewRabbitMQClient(cfg.RabbitMQ)
	case "pubsub":
		backend, err = notify.NewPubSubClient(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}
	if err != nil {
		return nil, err
	}
	return notify.New(backend, cfg.Notify.Channel), nil
}

func newArchive(ctx context.Context, cfg config.Config) (*storage.Archive, error) {
	var backend storage.ObjectStorage
	switch strings.ToLower(strings.TrimSpace(cfg.Archive.Backend)) {
	case "", "none":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Archive.Backend)
	}

	archive := storage.NewArchive(backend)
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}
