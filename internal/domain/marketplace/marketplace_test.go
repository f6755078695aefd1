package marketplace

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPair_ExpiresAt(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pair := &TokenPair{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 21600}

	assert.Equal(t, issued.Add(6*time.Hour), pair.ExpiresAt(issued))
}

func TestAuthorizationCode_Validate(t *testing.T) {
	tests := []struct {
		name    string
		grant   AuthorizationCode
		wantErr bool
	}{
		{"valid", AuthorizationCode{Code: "TG-abc", Verifier: "verifier"}, false},
		{"missing code", AuthorizationCode{Verifier: "verifier"}, true},
		{"missing verifier", AuthorizationCode{Code: "TG-abc"}, true},
		{"empty", AuthorizationCode{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grant.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrder_MessagePackID(t *testing.T) {
	packID := int64(2000004321)

	t.Run("uses pack id when present", func(t *testing.T) {
		order := &Order{ID: 12345, PackID: &packID}
		assert.Equal(t, packID, order.MessagePackID())
	})

	t.Run("falls back to order id", func(t *testing.T) {
		order := &Order{ID: 12345}
		assert.Equal(t, int64(12345), order.MessagePackID())
	})
}

func TestSellerProfile_HasAllowedReputation(t *testing.T) {
	tests := []struct {
		level   string
		allowed bool
	}{
		{"5_green", true},
		{"4_light_green", true},
		{"3_yellow", true},
		{"2_orange", false},
		{"1_red", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			profile := &SellerProfile{ReputationLevelID: tt.level}
			assert.Equal(t, tt.allowed, profile.HasAllowedReputation())
		})
	}
}

func TestSellerProfile_IsSuspended(t *testing.T) {
	assert.True(t, (&SellerProfile{Status: "suspended"}).IsSuspended())
	assert.False(t, (&SellerProfile{Status: "active"}).IsSuspended())
}

func TestItem_IsNew(t *testing.T) {
	assert.True(t, (&Item{Condition: "new"}).IsNew())
	assert.False(t, (&Item{Condition: "used"}).IsNew())
	assert.False(t, (&Item{}).IsNew())
}

func TestListingPage_HasMore(t *testing.T) {
	tests := []struct {
		name string
		page ListingPage
		want bool
	}{
		{"first of many", ListingPage{IDs: []string{"a", "b"}, Total: 5, Offset: 0, Limit: 2}, true},
		{"last full page", ListingPage{IDs: []string{"e"}, Total: 5, Offset: 4, Limit: 2}, false},
		{"single page", ListingPage{IDs: []string{"a", "b"}, Total: 2, Offset: 0, Limit: 20}, false},
		{"empty", ListingPage{Total: 0, Offset: 0, Limit: 20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.page.HasMore())
		})
	}
}

func TestPromotion_IsActive(t *testing.T) {
	assert.True(t, (&Promotion{Status: "active"}).IsActive())
	assert.False(t, (&Promotion{Status: "pending"}).IsActive())
}

func TestCreatePromotionRequest_Validate(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)

	valid := CreatePromotionRequest{
		SiteID:          "MLA",
		ItemID:          "MLA123456789",
		DiscountPercent: 15,
		StartDate:       start,
		EndDate:         end,
	}

	t.Run("valid", func(t *testing.T) {
		req := valid
		assert.NoError(t, req.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*CreatePromotionRequest)
	}{
		{"missing item id", func(r *CreatePromotionRequest) { r.ItemID = "" }},
		{"missing site id", func(r *CreatePromotionRequest) { r.SiteID = "" }},
		{"zero discount", func(r *CreatePromotionRequest) { r.DiscountPercent = 0 }},
		{"negative discount", func(r *CreatePromotionRequest) { r.DiscountPercent = -5 }},
		{"full discount", func(r *CreatePromotionRequest) { r.DiscountPercent = 100 }},
		{"missing end date", func(r *CreatePromotionRequest) { r.EndDate = time.Time{}; r.StartDate = time.Time{} }},
		{"end before start", func(r *CreatePromotionRequest) { r.EndDate = r.StartDate.Add(-time.Hour) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestMessageRequest_Validate(t *testing.T) {
	valid := MessageRequest{PackID: 2000004321, SellerID: 111, BuyerID: 222, Text: "Gracias por tu compra!"}

	t.Run("valid", func(t *testing.T) {
		req := valid
		assert.NoError(t, req.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*MessageRequest)
	}{
		{"missing pack id", func(r *MessageRequest) { r.PackID = 0 }},
		{"missing seller id", func(r *MessageRequest) { r.SellerID = 0 }},
		{"missing buyer id", func(r *MessageRequest) { r.BuyerID = 0 }},
		{"blank text", func(r *MessageRequest) { r.Text = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
		})
	}
}

func TestUpstreamError_Error(t *testing.T) {
	t.Run("with status", func(t *testing.T) {
		err := NewUpstreamError("search orders", 500, "internal error")
		assert.Contains(t, err.Error(), "search orders")
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("transport failure", func(t *testing.T) {
		err := NewUpstreamError("search orders", 0, "connection refused")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("unwraps through errors.As", func(t *testing.T) {
		wrapped := fmt.Errorf("sync: %w", NewUpstreamError("get order", 404, ""))
		var ue *UpstreamError
		require.True(t, errors.As(wrapped, &ue))
		assert.Equal(t, 404, ue.StatusCode)
	})
}

func TestDeliveryError_Error(t *testing.T) {
	err := &DeliveryError{PackID: 2000004321, StatusCode: 403, Detail: "blocked"}
	assert.Contains(t, err.Error(), "2000004321")
	assert.Contains(t, err.Error(), "403")
}
