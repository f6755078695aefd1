package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/crm"
)

// CustomerResponse is the customer view returned to the dashboard
type CustomerResponse struct {
	ID          uuid.UUID `json:"id"`
	MeliBuyerID int64     `json:"meli_buyer_id"`
	Nickname    string    `json:"nickname"`
	FirstName   *string   `json:"first_name,omitempty"`
	LastName    *string   `json:"last_name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerSummaryResponse is a customer annotated with order aggregates
type CustomerSummaryResponse struct {
	CustomerResponse
	PurchaseCount      int        `json:"purchase_count"`
	LastOrderID        int64      `json:"last_order_id,omitempty"`
	LastOrderDate      *time.Time `json:"last_order_date,omitempty"`
	LastShippingMethod *string    `json:"last_shipping_method,omitempty"`
	LastProvince       *string    `json:"last_province,omitempty"`
}

// SendMessageRequest is the payload for a post-sale message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// BroadcastResponse reports a message-all run
type BroadcastResponse struct {
	Total  int         `json:"total"`
	Sent   int         `json:"sent"`
	Failed int         `json:"failed"`
	SentTo []uuid.UUID `json:"sent_to"`
}

// CustomerResponseFromDomain converts a domain customer to its view
func CustomerResponseFromDomain(customer *crm.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          customer.ID,
		MeliBuyerID: customer.MeliBuyerID,
		Nickname:    customer.Nickname,
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		Email:       customer.Email,
		CreatedAt:   customer.CreatedAt,
		UpdatedAt:   customer.UpdatedAt,
	}
}

// CustomerSummaryResponseFromDomain converts a summary to its view
func CustomerSummaryResponseFromDomain(summary crm.CustomerSummary) CustomerSummaryResponse {
	resp := CustomerSummaryResponse{
		CustomerResponse:   CustomerResponseFromDomain(&summary.Customer),
		PurchaseCount:      summary.PurchaseCount,
		LastOrderID:        summary.LastOrderID,
		LastShippingMethod: summary.LastShippingMethod,
		LastProvince:       summary.LastProvince,
	}
	if !summary.LastOrderDate.IsZero() {
		d := summary.LastOrderDate
		resp.LastOrderDate = &d
	}
	return resp
}

// CustomerSummaryResponsesFromDomain converts a summary list
func CustomerSummaryResponsesFromDomain(summaries []crm.CustomerSummary) []CustomerSummaryResponse {
	out := make([]CustomerSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, CustomerSummaryResponseFromDomain(s))
	}
	return out
}
