// Package server exposes the webhook, health, analysis and metrics endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/storage"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/vision"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/utils"
)

// WebhookHandler routes one provider webhook and writes its response.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, p model.Provider, w http.ResponseWriter, req *http.Request) error
}

// SubscriptionVerifier answers the Meta webhook verification handshake.
type SubscriptionVerifier interface {
	VerifySubscription(mode, token, challenge string) (string, bool)
}

// Options configures the HTTP listener.
type Options struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MetricsEnabled bool
}

// Server is the service's single HTTP listener.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	webhooks   WebhookHandler
	verifier   SubscriptionVerifier
	analyzer   vision.Analyzer
	health     storage.HealthChecker
	logger     *zap.Logger
}

// NewServer builds the gin engine and registers every route.
func NewServer(
	opts Options,
	webhooks WebhookHandler,
	verifier SubscriptionVerifier,
	analyzer vision.Analyzer,
	health storage.HealthChecker,
	logger *zap.Logger,
) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestContext(logger), accessLog(logger))

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", opts.Port),
			Handler:      engine,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
		engine:   engine,
		webhooks: webhooks,
		verifier: verifier,
		analyzer: analyzer,
		health:   health,
		logger:   logger.Named("http_server"),
	}

	engine.POST("/webhook/twilio", s.handleWebhook(model.ProviderTwilio))
	engine.POST("/webhook/meta", s.handleWebhook(model.ProviderMeta))
	engine.GET("/webhook/meta", s.handleMetaVerify)
	engine.GET("/health", s.handleHealth)
	engine.GET("/ready", s.handleReady)
	engine.POST("/api/analyze", s.handleAnalyze)

	if opts.MetricsEnabled {
		s.logger.Info("Registering /metrics endpoint")
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		defer utils.RecoverWithLog(context.Background(), "http server")
		s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}
