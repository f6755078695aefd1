package promotion

import (
	"context"

	"github.com/melihub/backend/internal/domain/marketplace"
	"go.uber.org/zap"
)

// EligibilityService answers the two boolean gates consulted before any
// promotion is created: may this seller run promotions, and may this
// listing participate.
type EligibilityService struct {
	api    marketplace.API
	logger *zap.Logger
}

// NewEligibilityService creates a new eligibility service
func NewEligibilityService(api marketplace.API, logger *zap.Logger) *EligibilityService {
	return &EligibilityService{api: api, logger: logger}
}

// IsSellerEligible returns true when the seller's reputation tier
// allows promotions and the account is not suspended
func (s *EligibilityService) IsSellerEligible(ctx context.Context, accessToken string, sellerID int64) (bool, error) {
	profile, err := s.api.GetSeller(ctx, accessToken, sellerID)
	if err != nil {
		return false, err
	}

	eligible := profile.HasAllowedReputation() && !profile.IsSuspended()
	if !eligible {
		s.logger.Info("Seller failed promotion eligibility",
			zap.Int64("seller_id", sellerID),
			zap.String("reputation", profile.ReputationLevelID),
			zap.String("status", profile.Status))
	}
	return eligible, nil
}

// IsItemEligible returns true when the listing appears in the
// marketplace's eligible-items response for its site
func (s *EligibilityService) IsItemEligible(ctx context.Context, accessToken, itemID, siteID string) (bool, error) {
	eligible, err := s.api.EligibleItems(ctx, accessToken, []string{itemID}, siteID)
	if err != nil {
		return false, err
	}

	for _, id := range eligible {
		if id == itemID {
			return true, nil
		}
	}
	return false, nil
}
