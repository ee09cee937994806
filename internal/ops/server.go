// Package ops exposes the bot's observability HTTP endpoints.
package ops

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/btquan/tweetnest/internal/bot/queue"
)

// Server serves /health and /stats for liveness checks and queue
// inspection. It is observability only and takes no part in the job
// pipeline.
type Server struct {
	logger  *slog.Logger
	httpSrv *http.Server
	queue   *queue.Queue
	started time.Time
}

// New creates an ops server listening on the given port.
func New(logger *slog.Logger, q *queue.Queue, port int) *Server {
	s := &Server{
		logger:  logger,
		queue:   q,
		started: time.Now(),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(loggerMiddleware(logger))

	r.GET("/health", s.health)
	r.GET("/stats", s.stats)

	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Ops server listening",
		slog.String("addr", s.httpSrv.Addr),
	)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ops server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tweetnest-bot",
	})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"queue_depth":    s.queue.Depth(),
		"in_flight":      s.queue.InFlight(),
		"processed":      s.queue.Processed(),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

// loggerMiddleware logs HTTP requests with slog
func loggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP Request",
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
