package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"multiball-waitlist/pkg/clients/mailchimp"
	"multiball-waitlist/pkg/models"
	"multiball-waitlist/pkg/services"
)

const (
	msgInvalidEmail    = "Valid email is required"
	msgInvalidJSON     = "Invalid JSON format"
	msgSubscribed      = "Successfully subscribed!"
	msgAlreadyOnList   = "You're already on the list!"
	msgSubscribeFailed = "Failed to subscribe. Please try again."
	msgInterestThanks  = "Thanks! We'll be in touch soon."
	msgGeneric         = "Something went wrong. Please try again."
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	signupService   services.SignupService
	interestService services.InterestService
	logger          *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	signupService services.SignupService,
	interestService services.InterestService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		signupService:   signupService,
		interestService: interestService,
		logger:          logger,
	}
}

// Register mounts the API routes on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.POST("/api/subscribe", h.Subscribe)
	r.POST("/api/coach-interest", h.CoachInterest)
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Subscribe handles POST /api/subscribe
func (h *Handlers) Subscribe(c *gin.Context) {
	var req models.SignupRequest
	if !h.bind(c, &req) {
		return
	}

	outcome, err := h.signupService.Subscribe(c.Request.Context(), req)
	switch outcome {
	case models.OutcomeAcceptedNew:
		c.JSON(http.StatusOK, models.MessageResponse{Message: msgSubscribed})
	case models.OutcomeAcceptedDuplicate:
		c.JSON(http.StatusOK, models.MessageResponse{Message: msgAlreadyOnList})
	case models.OutcomeRejectedInvalid:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidEmail})
	default:
		h.logger.Error("Subscribe error", zap.Error(err))
		// a provider rejection gets the retry prompt; anything else is unexpected
		var apiErr *mailchimp.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgSubscribeFailed})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgGeneric})
	}
}

// CoachInterest handles POST /api/coach-interest
func (h *Handlers) CoachInterest(c *gin.Context) {
	var req models.InterestRequest
	if !h.bind(c, &req) {
		return
	}

	outcome, err := h.interestService.SubmitInterest(c.Request.Context(), req)
	switch outcome {
	case models.OutcomeAcceptedNew, models.OutcomeAcceptedDuplicate:
		c.JSON(http.StatusOK, models.MessageResponse{Message: msgInterestThanks})
	case models.OutcomeRejectedInvalid:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidEmail})
	default:
		h.logger.Error("Coach interest error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgGeneric})
	}
}

// bind decodes the JSON body and writes the 400 response itself when the
// body is malformed or fails the binding rules.
func (h *Handlers) bind(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidEmail})
		return false
	}

	h.logger.Debug("Error parsing JSON", zap.Error(err))
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidJSON})
	return false
}
