package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conmale73/myspace-be/internal/cache"
	"github.com/conmale73/myspace-be/internal/cache/inmemory"
	"github.com/conmale73/myspace-be/internal/realtime"
	"github.com/conmale73/myspace-be/internal/rest/ws"
)

type Rest struct {
	config *Config

	server *http.Server
}

func NewRest(config *Config) *Rest {
	return &Rest{
		config: config,
	}
}

func (rest *Rest) Start() {
	router := chi.NewRouter()

	// Define the /ping endpoint
	router.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("pong"))
		if err != nil {
			return
		}
	})

	// Define the /ws endpoint
	hub := realtime.NewHub(rest.config.Logger)
	selectedCache := rest.defineCache()

	wsHandler := ws.NewHandler(
		hub,
		selectedCache,
		rest.config.CacheTTL,
		rest.config.JwtHeaderName,
		rest.config.JwtValidationURL,
		rest.config.Logger,
	)
	router.HandleFunc("/ws", wsHandler.Handle)

	rest.server = &http.Server{
		Addr:              ":" + strconv.Itoa(rest.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 0,
	}
	if err := rest.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		rest.config.Logger.Error("server error", zap.Error(err))
		return
	}
}

func (rest *Rest) Stop() {
	if err := rest.server.Shutdown(context.Background()); err != nil {
		rest.config.Logger.Error("server error", zap.Error(err))
	}
}

func (rest *Rest) defineCache() cache.Cache {
	var c cache.Cache

	switch rest.config.CacheType {
	case cache.InMemoryCacheType:
		rest.config.Logger.Info("Using in-memory cache")
		c = inmemory.NewCache(rest.config.Logger)
	default:
		rest.config.Logger.Info("Using in-memory cache")
		c = inmemory.NewCache(rest.config.Logger)
	}

	return c
}
