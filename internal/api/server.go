// Package api exposes augmentation over HTTP.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"textattack/app"
	domainAugmentation "textattack/domain/augmentation"
	"textattack/domain/core"
	"textattack/internal"

	"github.com/gin-gonic/gin"
)

// Service is the slice of the augmentation service the handlers use.
type Service interface {
	Recipes() []string
	Augment(ctx context.Context, req app.AugmentRequest) (*domainAugmentation.Run, error)
	GetRun(ctx context.Context, id core.RunID) (*domainAugmentation.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*domainAugmentation.Run, error)
}

// Server is the HTTP front of the augmentation service
type Server struct {
	router  *gin.Engine
	service Service
	logger  *internal.Logger

	mu   sync.Mutex
	http *http.Server
}

// NewServer creates a server with every route registered. mode is a gin mode
// (debug, release, test); empty keeps gin's current mode.
func NewServer(service Service, logger *internal.Logger, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:  gin.New(),
		service: service,
		logger:  logger,
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.GET("/recipes", s.handleRecipes)
	v1.POST("/augment", s.handleAugment)
	v1.POST("/batch", s.handleBatch)
	v1.GET("/runs", s.handleListRuns)
	v1.GET("/runs/:id", s.handleGetRun)
}

// requestLogger logs one debug line per request
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("[API] %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.logger.Info("[API] listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
