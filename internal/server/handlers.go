package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/config"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/observer"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/validator"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/utils"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,url"`
}

// AnalyzeResponse is returned by POST /api/analyze.
type AnalyzeResponse struct {
	Success  bool                     `json:"success"`
	Analysis *model.NutritionAnalysis `json:"analysis,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

func (s *Server) handleWebhook(p model.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		observer.IncWebhookReceived(p.String(), c.Request.Method)
		if err := s.webhooks.HandleWebhook(c.Request.Context(), p, c.Writer, c.Request); err != nil {
			logger.FromContextOr(c.Request.Context(), s.logger).Error("Webhook not handled", zap.Error(err))
			c.AbortWithStatus(http.StatusNotFound)
		}
	}
}

// handleMetaVerify echoes hub.challenge when the verify token matches.
func (s *Server) handleMetaVerify(c *gin.Context) {
	observer.IncWebhookReceived(model.ProviderMeta.String(), c.Request.Method)
	challenge, ok := s.verifier.VerifySubscription(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if !ok {
		logger.FromContextOr(c.Request.Context(), s.logger).Warn("Meta webhook verification rejected")
		c.Status(http.StatusForbidden)
		return
	}
	c.String(http.StatusOK, challenge)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   config.ServiceName,
		"timestamp": utils.FormatISO8601(utils.Now()),
	})
}

func (s *Server) handleReady(c *gin.Context) {
	if s.health != nil {
		if err := s.health.Ping(c.Request.Context()); err != nil {
			logger.FromContextOr(c.Request.Context(), s.logger).Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": utils.FormatISO8601(utils.Now()),
	})
}

// handleAnalyze runs the vision model on an image URL without any chat provider.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, AnalyzeResponse{Error: "invalid JSON body"})
		return
	}
	if err := validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, AnalyzeResponse{Error: err.Error()})
		return
	}

	analysis, err := s.analyzer.Analyze(c.Request.Context(), req.ImageURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, AnalyzeResponse{Error: "could not analyze image"})
		return
	}
	c.JSON(http.StatusOK, AnalyzeResponse{Success: true, Analysis: analysis})
}
