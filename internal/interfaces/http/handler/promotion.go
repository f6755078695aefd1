package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/melihub/backend/internal/application/promotion"
)

// CreatePromotionRequest is the payload to run a promotion campaign
type CreatePromotionRequest struct {
	CustomerIDs     []uuid.UUID `json:"customer_ids"`
	ProductID       string      `json:"product_id" binding:"required"`
	DiscountPercent float64     `json:"discount_percent" binding:"required,gt=0,lt=100"`
	ExpiresAt       time.Time   `json:"expires_at" binding:"required"`
}

// PromotionHandler handles promotion campaign creation
type PromotionHandler struct {
	BaseHandler
	promotionService *promotion.PromotionService
}

// NewPromotionHandler creates a new promotion handler
func NewPromotionHandler(promotionService *promotion.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotionService: promotionService}
}

// RegisterRoutes registers promotion routes
func (h *PromotionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/promotions", h.Create)
}

// Create runs the full campaign flow: eligibility gates, promotion
// submission, activation polling and customer notification
func (h *PromotionHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.promotionService.CreatePromotion(c.Request.Context(), userID, promotion.CreatePromotionInput{
		CustomerIDs:     req.CustomerIDs,
		ProductID:       req.ProductID,
		DiscountPercent: req.DiscountPercent,
		ExpiresAt:       req.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
