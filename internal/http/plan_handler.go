package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"furious-host/internal/llm"
	"furious-host/internal/service"
)

// PlanHandler mantiene dependencias para el endpoint de recomendacion de planes.
type PlanHandler struct {
	logger   *zap.Logger
	planServ *service.PlanService
}

// NewPlanHandler crea una instancia de PlanHandler con dependencias necesarias.
func NewPlanHandler(logger *zap.Logger, planServ *service.PlanService) *PlanHandler {
	return &PlanHandler{logger: logger, planServ: planServ}
}

// SuggestPlan maneja POST /plans/suggest.
func (h *PlanHandler) SuggestPlan(c *gin.Context) {
	var req struct {
		Requirements string `json:"requirements"`
		PlanType     string `json:"planType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid suggest plan request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing requirements or planType"})
		return
	}

	recommendation, err := h.planServ.Recommend(c.Request.Context(), req.Requirements, req.PlanType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing requirements or planType"})
		case errors.Is(err, service.ErrPlanUnknownType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown planType"})
		case errors.Is(err, llm.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
		case errors.Is(err, llm.ErrPaymentRequired):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment required. Please add credits to your workspace."})
		case errors.Is(err, llm.ErrNotConfigured):
			h.logger.Error("ai gateway not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "AI gateway is not configured"})
		default:
			h.logger.Error("suggest plan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get AI recommendation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendation": recommendation})
}
