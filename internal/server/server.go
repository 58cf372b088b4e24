// Package server exposes the coordinator to out-of-process surfaces.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/hxnx/synesth/internal/session"
)

// InstanceHeader carries the daemon's per-process ID on every response.
// Clients echo the ID they pinned on each request; a mismatch is rejected
// before the request is decoded.
const InstanceHeader = "X-Synesth-Instance"

const (
	maxBodyBytes = 1 << 20

	// Surfaces going away do not cancel a pipeline; this bounds it instead.
	dispatchTimeout = 2 * time.Minute
)

type Dispatcher interface {
	Dispatch(ctx context.Context, req session.Request) (any, error)
}

type Server struct {
	dispatcher Dispatcher
	instanceID string
	logger     logrus.FieldLogger
	router     *gin.Engine

	mu         sync.Mutex
	httpServer *http.Server
}

func New(dispatcher Dispatcher, gatherer prometheus.Gatherer, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		dispatcher: dispatcher,
		instanceID: uuid.NewString(),
		logger:     logger,
		router:     gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes(gatherer)

	return s
}

func (s *Server) InstanceID() string {
	return s.instanceID
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", InstanceHeader}
	corsConfig.ExposeHeaders = []string{InstanceHeader}

	s.router.Use(gin.Recovery())
	s.router.Use(cors.New(corsConfig))
	s.router.Use(s.stampInstance)
	s.router.Use(s.logRequests)
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/liveness", s.handleLiveness)
		v1.POST("/messages", s.requireInstance, s.handleMessage)
	}
}

func (s *Server) stampInstance(c *gin.Context) {
	c.Header(InstanceHeader, s.instanceID)
	c.Next()
}

// requireInstance turns away surfaces pinned to another process. Requests
// without the header have not pinned anything yet and pass.
func (s *Server) requireInstance(c *gin.Context) {
	pinned := c.GetHeader(InstanceHeader)
	if pinned == "" || pinned == s.instanceID {
		c.Next()
		return
	}

	s.logger.WithField("pinned", pinned).Debug("rejecting request from stale surface")
	s.fail(c, session.ErrStaleInstance)
	c.Abort()
}

func (s *Server) logRequests(c *gin.Context) {
	started := time.Now()
	c.Next()

	s.logger.WithFields(logrus.Fields{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Debug("http request")
}

func (s *Server) handleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"instanceId": s.instanceID})
}

func (s *Server) handleMessage(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		s.fail(c, fmt.Errorf("%w: %v", session.ErrMalformedRequest, err))
		return
	}

	req, err := session.DecodeRequest(raw)
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), dispatchTimeout)
	defer cancel()

	reply, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (s *Server) fail(c *gin.Context, err error) {
	code := session.CodeOf(err)
	message := err.Error()
	if code == session.CodeInternal {
		// Storage errors stay in the log.
		message = "internal error"
	}
	c.JSON(code.HTTPStatus(), session.ErrorResponse{Error: message, Code: code})
}

// Start serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.WithField("addr", addr).Info("http server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
