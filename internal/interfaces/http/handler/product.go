package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	appcrm "github.com/melihub/backend/internal/application/crm"
	"github.com/melihub/backend/internal/application/promotion"
)

const (
	defaultListingLimit = 20
	maxListingLimit     = 50
)

// ProductHandler handles the product surface: persisted product records,
// the active-listing browser and direct price discounts
type ProductHandler struct {
	BaseHandler
	productService *appcrm.ProductQueryService
	listingService *promotion.ListingService
	priceService   *promotion.PriceService
}

// NewProductHandler creates a new product handler
func NewProductHandler(
	productService *appcrm.ProductQueryService,
	listingService *promotion.ListingService,
	priceService *promotion.PriceService,
) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		listingService: listingService,
		priceService:   priceService,
	}
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.List)
	rg.POST("/products/:id/discount", h.ApplyDiscount)
	rg.GET("/listings", h.ListActive)
}

// List returns the persisted product/promotion records
func (h *ProductHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	products, err := h.productService.ListProducts(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ProductResponsesFromDomain(products))
}

// ListActive pages through the seller's active marketplace listings
func (h *ProductHandler) ListActive(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		h.BadRequest(c, "Invalid offset")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListingLimit)))
	if err != nil || limit < 1 || limit > maxListingLimit {
		h.BadRequest(c, "Invalid limit")
		return
	}

	page, err := h.listingService.ListActive(c.Request.Context(), userID, offset, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Offset, page.Limit)
}

// ApplyDiscount applies an immediate price cut to a listing
func (h *ProductHandler) ApplyDiscount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	itemID := c.Param("id")

	var req DirectDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.priceService.ApplyDirectDiscount(c.Request.Context(), userID, itemID, req.DiscountPercent)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
