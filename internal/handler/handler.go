package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"news_digest/internal/domain"
)

type SubscriberStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	Create(ctx context.Context, email, name string) (*domain.Subscriber, error)
	SetActive(ctx context.Context, email string, active bool) error
	Delete(ctx context.Context, email string) (bool, error)
	CountActive(ctx context.Context) (int, error)
}

type ConfirmationSender interface {
	SendConfirmation(to, name string) error
}

type Runner interface {
	Run(ctx context.Context, hours, topN int) domain.RunResult
}

// SubscriberHandler exposes subscription management and a manual pipeline
// trigger over HTTP.
type SubscriberHandler struct {
	store  SubscriberStore
	sender ConfirmationSender
	runner Runner
	hours  int
	topN   int
	logger *slog.Logger
}

func NewSubscriberHandler(store SubscriberStore, sender ConfirmationSender, runner Runner, hours, topN int, logger *slog.Logger) *SubscriberHandler {
	return &SubscriberHandler{
		store:  store,
		sender: sender,
		runner: runner,
		hours:  hours,
		topN:   topN,
		logger: logger.With("component", "api"),
	}
}

// Register attaches all routes to the engine.
func (h *SubscriberHandler) Register(r *gin.Engine) {
	r.GET("/", h.GetRoot)
	r.GET("/health", h.GetHealth)
	r.POST("/api/subscribe", h.Subscribe)
	r.POST("/api/unsubscribe", h.Unsubscribe)
	r.GET("/api/subscribers/count", h.GetSubscriberCount)
	r.POST("/api/trigger-daily-digest", h.TriggerDailyDigest)
}

func (h *SubscriberHandler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "AI News Digest API",
		"status":  "running",
	})
}

func (h *SubscriberHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *SubscriberHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email address is required"})
		return
	}

	existing, err := h.store.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("subscriber lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if existing != nil {
		if existing.Active {
			c.JSON(http.StatusOK, StatusResponse{
				Success: false,
				Message: "This email is already subscribed to our digest.",
			})
			return
		}

		if err := h.store.SetActive(c.Request.Context(), req.Email, true); err != nil {
			h.logger.Error("reactivation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		h.sendConfirmation(req.Email, existing.Name)
		c.JSON(http.StatusOK, StatusResponse{
			Success: true,
			Message: "Welcome back! Your subscription has been reactivated. Check your email for confirmation.",
		})
		return
	}

	sub, err := h.store.Create(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		h.logger.Error("subscriber creation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	h.sendConfirmation(sub.Email, sub.Name)
	c.JSON(http.StatusOK, StatusResponse{
		Success: true,
		Message: "Successfully subscribed! Check your email for confirmation.",
	})
}

func (h *SubscriberHandler) Unsubscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email address is required"})
		return
	}

	deleted, err := h.store.Delete(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("unsubscribe failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusOK, StatusResponse{
			Success: false,
			Message: "This email address is not subscribed to our digest.",
		})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Success: true,
		Message: "Successfully unsubscribed. We're sorry to see you go!",
	})
}

func (h *SubscriberHandler) GetSubscriberCount(c *gin.Context) {
	count, err := h.store.CountActive(c.Request.Context())
	if err != nil {
		h.logger.Error("subscriber count failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: count})
}

func (h *SubscriberHandler) TriggerDailyDigest(c *gin.Context) {
	result := h.runner.Run(c.Request.Context(), h.hours, h.topN)

	res := TriggerResponse{
		Success:          result.Success,
		Error:            result.Error,
		DigestsProcessed: result.Digests.Processed,
		EmailsSent:       result.Email.Sent,
		Duration:         result.Duration.String(),
	}
	if !result.Success && res.Error == "" {
		res.Error = result.Email.Error
	}
	c.JSON(http.StatusOK, res)
}

// sendConfirmation is best effort. A broken SMTP setup should not block
// signups.
func (h *SubscriberHandler) sendConfirmation(email, name string) {
	if h.sender == nil {
		return
	}
	if err := h.sender.SendConfirmation(email, name); err != nil {
		h.logger.Warn("confirmation email failed", "to", email, "error", err)
	}
}
