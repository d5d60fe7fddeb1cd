// Package frontend serves the core services over HTTP and the command line.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mikey/chainblog/internal/core"
	"github.com/mikey/chainblog/internal/ports"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// HTTPFrontend is the JSON API
type HTTPFrontend struct {
	router          *gin.Engine
	server          *http.Server
	shutdownTimeout time.Duration
	classifier      core.Classifier
	writer          ports.Writer
	campaigns       ports.CampaignManager
	logger          *zap.Logger
}

// NewHTTPFrontend builds the router. metricsHandler may be nil.
func NewHTTPFrontend(
	listenAddress string,
	shutdownTimeout time.Duration,
	classifier core.Classifier,
	writer ports.Writer,
	campaigns ports.CampaignManager,
	metricsHandler http.Handler,
	logger *zap.Logger,
) *HTTPFrontend {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	f := &HTTPFrontend{
		router:          router,
		shutdownTimeout: shutdownTimeout,
		classifier:      classifier,
		writer:          writer,
		campaigns:       campaigns,
		logger:          logger,
	}
	f.server = &http.Server{
		Addr:              listenAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := router.Group("/api/v1")
	api.POST("/moderation", f.moderate)
	api.POST("/summaries", f.summarize)
	api.POST("/drafts", f.draft)
	api.GET("/campaigns", f.listCampaigns)
	api.GET("/campaigns/:id", f.getCampaign)
	api.POST("/campaigns", f.createCampaign)
	api.PUT("/campaigns/:id", f.editCampaign)
	api.DELETE("/campaigns/:id", f.deleteCampaign)
	api.POST("/campaigns/:id/donations", f.donate)

	return f
}

// Handler exposes the router for tests and embedding
func (f *HTTPFrontend) Handler() http.Handler {
	return f.router
}

// Start listens until Stop is called
func (f *HTTPFrontend) Start() error {
	f.logger.Info("Starting HTTP API", zap.String("address", f.server.Addr))
	if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Stop drains in-flight requests within the shutdown timeout
func (f *HTTPFrontend) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), f.shutdownTimeout)
	defer cancel()

	if err := f.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	f.logger.Info("HTTP API stopped")
	return nil
}

// requestLogger logs one line per request and tags it with a request id
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			logger.Error("HTTP request with errors", append(fields, zap.Strings("errors", c.Errors.Errors()))...)
			return
		}
		logger.Info("HTTP request", fields...)
	}
}
