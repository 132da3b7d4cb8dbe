// Package server exposes the trackpad over HTTP: the browser client, a
// health probe and the touch socket.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kuldippatel.dev/dargo/internal/auth"
	"kuldippatel.dev/dargo/internal/config"
	"kuldippatel.dev/dargo/internal/input"
	"kuldippatel.dev/dargo/web"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	log       *zap.SugaredLogger
	config    *config.Config
	registrar input.Registrar
	router    *gin.Engine

	mu       sync.Mutex
	sessions map[string]*Session
}

func New(log *zap.SugaredLogger, cfg *config.Config, registrar input.Registrar) *Server {
	s := &Server{
		log:       log,
		config:    cfg,
		registrar: registrar,
		sessions:  make(map[string]*Session),
	}
	s.initRouter()
	return s
}

// Handler returns the root handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) initRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(s.requestLogger())
	s.router.Use(gin.Recovery())

	for _, asset := range web.Assets {
		s.router.GET(asset.Path, s.handleAsset(asset.File, asset.ContentType))
	}

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/api/socket", s.authMiddleware(), s.handleSocket)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debugw("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"remote", c.ClientIP(),
			"latency", time.Since(start),
		)
	}
}

// authMiddleware accepts a token from the query string or a bearer header.
// It is a no-op when no secret is configured.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.AuthSecret == "" {
			c.Next()
			return
		}

		token := c.Query("token")
		if token == "" {
			if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		if err := auth.Verify(s.config.AuthSecret, token); err != nil {
			s.log.Warnw("rejected socket", "remote", c.ClientIP(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Next()
	}
}

func (s *Server) handleAsset(name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := web.Files.ReadFile(name)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) addSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

func (s *Server) removeSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session.ID)
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		session.Stop()
	}
}

// Run serves on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	s.log.Infow("listening", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown does not touch hijacked connections.
	s.closeSessions()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
