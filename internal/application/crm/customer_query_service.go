package crm

import (
	"context"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/crm"
	"go.uber.org/zap"
)

// CustomerQueryService serves customer reads for dashboards. Aggregates
// come from the summary cache when a sync has populated it; on a miss
// the bare customer rows are returned with zero aggregates rather than
// forcing a live resync.
type CustomerQueryService struct {
	customerRepo crm.CustomerRepository
	cache        SummaryCache
	logger       *zap.Logger
}

// NewCustomerQueryService creates a new customer query service. cache
// may be nil when no summary cache is configured.
func NewCustomerQueryService(customerRepo crm.CustomerRepository, cache SummaryCache, logger *zap.Logger) *CustomerQueryService {
	return &CustomerQueryService{
		customerRepo: customerRepo,
		cache:        cache,
		logger:       logger,
	}
}

// ListCustomers returns the user's customers with the best available
// aggregate annotations
func (s *CustomerQueryService) ListCustomers(ctx context.Context, userID uuid.UUID) ([]crm.CustomerSummary, error) {
	if s.cache != nil {
		summaries, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("Summary cache read failed", zap.Error(err))
		} else if ok {
			return summaries, nil
		}
	}

	customers, err := s.customerRepo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]crm.CustomerSummary, 0, len(customers))
	for i := range customers {
		summaries = append(summaries, crm.CustomerSummary{Customer: customers[i]})
	}
	return summaries, nil
}

// GetCustomer returns one customer scoped to the user
func (s *CustomerQueryService) GetCustomer(ctx context.Context, userID, customerID uuid.UUID) (*crm.Customer, error) {
	return s.customerRepo.FindByIDForUser(ctx, userID, customerID)
}
