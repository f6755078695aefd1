package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/crm"
	"github.com/shopspring/decimal"
)

// ProductResponse is the local listing record view
type ProductResponse struct {
	ID                 uuid.UUID       `json:"id"`
	MeliItemID         string          `json:"meli_item_id"`
	Title              string          `json:"title"`
	Price              decimal.Decimal `json:"price"`
	Permalink          string          `json:"permalink"`
	PromotionID        *string         `json:"promotion_id,omitempty"`
	PromotionLink      *string         `json:"promotion_link,omitempty"`
	PromotionExpiresAt *time.Time      `json:"promotion_expires_at,omitempty"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// DirectDiscountRequest is the payload for an immediate price cut
type DirectDiscountRequest struct {
	DiscountPercent float64 `json:"discount_percent" binding:"required,gt=0,lt=100"`
}

// ProductResponseFromDomain converts a domain product to its view
func ProductResponseFromDomain(product *crm.Product) ProductResponse {
	return ProductResponse{
		ID:                 product.ID,
		MeliItemID:         product.MeliItemID,
		Title:              product.Title,
		Price:              product.Price,
		Permalink:          product.Permalink,
		PromotionID:        product.PromotionID,
		PromotionLink:      product.PromotionLink,
		PromotionExpiresAt: product.PromotionExpiresAt,
		UpdatedAt:          product.UpdatedAt,
	}
}

// ProductResponsesFromDomain converts a product list
func ProductResponsesFromDomain(products []crm.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ProductResponseFromDomain(&products[i]))
	}
	return out
}
