// Package mockapi serves the users and catalog collections over HTTP the way a
// json-server backend does, for local development and integration tests.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/internal/middleware"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
	"github.com/noah-isme/coursehub-client/pkg/logger"
	corsmiddleware "github.com/noah-isme/coursehub-client/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coursehub-client/pkg/middleware/requestid"
	"github.com/noah-isme/coursehub-client/pkg/response"
)

// Options tunes the fake backend.
type Options struct {
	// UniqueEnrollments rejects a second enrollment for the same (userId, courseId) with 409.
	UniqueEnrollments bool
	AllowedOrigins    []string
	Logger            *zap.Logger
	Observer          middleware.RequestObserver
	MetricsHandler    http.Handler
}

// Server is the gin engine bound to a Store.
type Server struct {
	store  *Store
	engine *gin.Engine
	logger *zap.Logger
}

// New builds the router.
func New(store *Store, opts Options) *Server {
	if store == nil {
		store = NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.UniqueEnrollments {
		store.Unique("enrollments", "userId", "courseId")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Observer))

	s := &Server{store: store, engine: r, logger: opts.Logger}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "collections": store.Collections()})
	})
	if opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	r.GET("/:collection", s.list)
	r.POST("/:collection", s.create)
	r.GET("/:collection/:id", s.get)
	r.PATCH("/:collection/:id", s.patch)

	return s
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store returns the backing store.
func (s *Server) Store() *Store {
	return s.store
}

// Run serves on every addr until ctx is cancelled, then shuts down gracefully.
// Serving several addresses lets one store stand in for both the users and the
// catalog service.
func (s *Server) Run(ctx context.Context, addrs ...string) error {
	if len(addrs) == 0 {
		return errors.New("no listen address")
	}

	servers := make([]*http.Server, 0, len(addrs))
	errCh := make(chan error, len(addrs))
	for _, addr := range addrs {
		srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
		servers = append(servers, srv)
		go func(srv *http.Server) {
			s.logger.Info("mock api listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("mock api shutting down")
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func (s *Server) list(c *gin.Context) {
	filter := make(map[string][]string)
	for key, values := range c.Request.URL.Query() {
		// _sort, _page and friends are not filters.
		if strings.HasPrefix(key, "_") {
			continue
		}
		filter[key] = values
	}

	records, err := s.store.List(c.Param("collection"), filter)
	if err != nil {
		response.Error(c, s.translate(err, c))
		return
	}
	response.JSON(c, http.StatusOK, records)
}

func (s *Server) get(c *gin.Context) {
	record, err := s.store.Get(c.Param("collection"), c.Param("id"))
	if err != nil {
		response.Error(c, s.translate(err, c))
		return
	}
	response.JSON(c, http.StatusOK, record)
}

func (s *Server) create(c *gin.Context) {
	var body Record
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "body must be a JSON object"))
		return
	}
	record, err := s.store.Insert(c.Param("collection"), body)
	if err != nil {
		response.Error(c, s.translate(err, c))
		return
	}
	response.Created(c, record)
}

func (s *Server) patch(c *gin.Context) {
	var body Record
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "body must be a JSON object"))
		return
	}
	record, err := s.store.Patch(c.Param("collection"), c.Param("id"), body)
	if err != nil {
		response.Error(c, s.translate(err, c))
		return
	}
	response.JSON(c, http.StatusOK, record)
}

func (s *Server) translate(err error, c *gin.Context) error {
	switch {
	case errors.Is(err, errUnknownCollection):
		return appErrors.Clone(appErrors.ErrNotFound, "unknown collection "+c.Param("collection"))
	case errors.Is(err, errRecordNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "record not found")
	case errors.Is(err, errDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, "record violates a unique constraint")
	default:
		s.logger.Error("store failure", zap.Error(err))
		return err
	}
}
