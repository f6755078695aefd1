package promotion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/application/integration"
	"github.com/melihub/backend/internal/domain/crm"
	"github.com/melihub/backend/internal/domain/identity"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/melihub/backend/internal/domain/shared"
	"github.com/melihub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PromotionServiceConfig contains configuration for the promotion
// orchestrator
type PromotionServiceConfig struct {
	// PollAttempts is how many activation polls run before giving up
	PollAttempts int
	// PollInterval is the pause after each non-active poll
	PollInterval time.Duration
}

// DefaultPromotionServiceConfig returns default configuration
func DefaultPromotionServiceConfig() PromotionServiceConfig {
	return PromotionServiceConfig{
		PollAttempts: 5,
		PollInterval: time.Second,
	}
}

// CreatePromotionInput is the request to run a promotion campaign
type CreatePromotionInput struct {
	// CustomerIDs are the customers to notify once the promotion exists
	CustomerIDs []uuid.UUID
	// ProductID is the marketplace listing to discount
	ProductID string
	// DiscountPercent is the discount, strictly between 0 and 100
	DiscountPercent float64
	// ExpiresAt is when the promotion ends
	ExpiresAt time.Time
}

// PromotionResult reports a finished campaign. Success is false when
// the promotion exists but nobody could be notified; that is a soft
// failure, not an error.
type PromotionResult struct {
	Success     bool        `json:"success"`
	PromotionID string      `json:"promotion_id"`
	Link        *string     `json:"promotion_link,omitempty"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Activated   bool        `json:"activated"`
	SentTo      []uuid.UUID `json:"promotions_sent"`
	Message     string      `json:"message,omitempty"`
}

// PromotionService orchestrates the full campaign flow: validation,
// eligibility gates, promotion submission, activation polling, the
// product record upsert and the customer notification fan-out.
type PromotionService struct {
	userRepo     identity.UserRepository
	customerRepo crm.CustomerRepository
	orderRepo    crm.OrderRepository
	productRepo  crm.ProductRepository
	tokens       *integration.TokenService
	api          marketplace.API
	eligibility  *EligibilityService
	config       PromotionServiceConfig
	logger       *zap.Logger
	metrics      *telemetry.IntegrationMetrics

	// sleep is swappable so tests can observe the polling cadence
	sleep func(time.Duration)
}

// NewPromotionService creates a new promotion orchestrator
func NewPromotionService(
	userRepo identity.UserRepository,
	customerRepo crm.CustomerRepository,
	orderRepo crm.OrderRepository,
	productRepo crm.ProductRepository,
	tokens *integration.TokenService,
	api marketplace.API,
	eligibility *EligibilityService,
	config PromotionServiceConfig,
	logger *zap.Logger,
) *PromotionService {
	if config.PollAttempts <= 0 {
		config.PollAttempts = DefaultPromotionServiceConfig().PollAttempts
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPromotionServiceConfig().PollInterval
	}
	return &PromotionService{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		tokens:       tokens,
		api:          api,
		eligibility:  eligibility,
		config:       config,
		logger:       logger,
		sleep:        time.Sleep,
	}
}

// WithMetrics attaches integration metrics to the orchestrator
func (s *PromotionService) WithMetrics(metrics *telemetry.IntegrationMetrics) *PromotionService {
	s.metrics = metrics
	return s
}

// CreatePromotion runs the campaign end to end for the user
func (s *PromotionService) CreatePromotion(ctx context.Context, userID uuid.UUID, input CreatePromotionInput) (*PromotionResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.EnsureForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if user.MeliUserID == nil {
		return nil, marketplace.ErrNotLinked
	}
	sellerID := *user.MeliUserID

	sellerOK, err := s.eligibility.IsSellerEligible(ctx, token, sellerID)
	if err != nil {
		return nil, err
	}
	if !sellerOK {
		return nil, marketplace.ErrSellerNotEligible
	}

	item, err := s.api.GetItem(ctx, token, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !item.IsNew() {
		return nil, fmt.Errorf("%w: %s is %q", marketplace.ErrItemNotNew, item.ID, item.Condition)
	}

	itemOK, err := s.eligibility.IsItemEligible(ctx, token, item.ID, item.SiteID)
	if err != nil {
		return nil, err
	}
	if !itemOK {
		return nil, fmt.Errorf("%w: %s", marketplace.ErrItemNotEligible, item.ID)
	}

	created, err := s.api.CreatePromotion(ctx, token, &marketplace.CreatePromotionRequest{
		SiteID:          item.SiteID,
		ItemID:          item.ID,
		DiscountPercent: input.DiscountPercent,
		StartDate:       time.Now(),
		EndDate:         input.ExpiresAt,
	})
	if err != nil {
		s.metrics.RecordPromotion(ctx, telemetry.OutcomeFailure)
		return nil, err
	}
	s.metrics.RecordPromotion(ctx, telemetry.OutcomeSuccess)

	// Activation confirmation can time out without invalidating the
	// promotion; proceed with the last known state either way.
	final := s.awaitActivation(ctx, token, created)

	link := final.Link
	if link == nil && item.Permalink != "" {
		permalink := item.Permalink
		link = &permalink
	}
	expiresAt := input.ExpiresAt
	if final.FinishDate != nil {
		expiresAt = *final.FinishDate
	}

	if err := s.upsertProduct(ctx, userID, item, final.ID, link, expiresAt); err != nil {
		return nil, err
	}

	sent := s.notifyCustomers(ctx, token, userID, sellerID, input, item, link)

	result := &PromotionResult{
		Success:     len(sent) > 0,
		PromotionID: final.ID,
		Link:        link,
		ExpiresAt:   expiresAt,
		Activated:   final.IsActive(),
		SentTo:      sent,
	}
	if len(sent) == 0 {
		result.Message = "Promotion created but no customers could be notified"
	}

	s.logger.Info("Promotion campaign finished",
		zap.String("user_id", userID.String()),
		zap.String("promotion_id", final.ID),
		zap.Bool("activated", final.IsActive()),
		zap.Int("notified", len(sent)))

	return result, nil
}

func validateInput(input CreatePromotionInput) error {
	if input.ProductID == "" {
		return fmt.Errorf("%w: product id is required", marketplace.ErrInvalidRequest)
	}
	if input.DiscountPercent <= 0 || input.DiscountPercent >= 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100 exclusive", marketplace.ErrInvalidRequest)
	}
	if input.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: expiry timestamp is required", marketplace.ErrInvalidRequest)
	}
	if input.ExpiresAt.Before(time.Now().Add(-time.Minute)) {
		return fmt.Errorf("%w: expiry must not be in the past", marketplace.ErrInvalidRequest)
	}
	return nil
}

// awaitActivation polls the promotion status until it reports active or
// the attempt budget is exhausted, pausing after each non-active poll.
// Exhaustion is not an error; the last known state is returned.
func (s *PromotionService) awaitActivation(ctx context.Context, token string, created *marketplace.Promotion) *marketplace.Promotion {
	last := created

	for attempt := 0; attempt < s.config.PollAttempts; attempt++ {
		polled, err := s.api.GetPromotion(ctx, token, created.ID)
		if err != nil {
			s.logger.Warn("Promotion status poll failed",
				zap.String("promotion_id", created.ID),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
		} else {
			last = polled
			if polled.IsActive() {
				return polled
			}
		}
		s.sleep(s.config.PollInterval)
	}

	s.logger.Info("Promotion activation not confirmed, proceeding with last known state",
		zap.String("promotion_id", created.ID),
		zap.String("status", last.Status))
	return last
}

func (s *PromotionService) upsertProduct(ctx context.Context, userID uuid.UUID, item *marketplace.Item, promotionID string, link *string, expiresAt time.Time) error {
	product, err := s.productRepo.FindByItem(ctx, userID, item.ID)
	switch {
	case err == nil:
		if err := product.UpdateListing(item.Title, item.Price, item.Permalink); err != nil {
			return err
		}
	case errors.Is(err, shared.ErrNotFound):
		product, err = crm.NewProduct(userID, item.ID, item.Title, item.Price, item.Permalink)
		if err != nil {
			return err
		}
	default:
		return err
	}

	if err := product.ApplyPromotion(promotionID, link, expiresAt); err != nil {
		return err
	}
	return s.productRepo.Save(ctx, product)
}

// notifyCustomers fans the campaign message out to the requested
// customers. Unknown ids and customers without order history are
// skipped; per-customer delivery failures are logged and skipped.
func (s *PromotionService) notifyCustomers(ctx context.Context, token string, userID uuid.UUID, sellerID int64, input CreatePromotionInput, item *marketplace.Item, link *string) []uuid.UUID {
	text := campaignMessage(input.DiscountPercent, item.Title, link)
	sent := make([]uuid.UUID, 0, len(input.CustomerIDs))

	for _, customerID := range input.CustomerIDs {
		customer, err := s.customerRepo.FindByIDForUser(ctx, userID, customerID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("Customer lookup failed during fan-out",
					zap.String("customer_id", customerID.String()),
					zap.Error(err))
			}
			continue
		}

		order, err := s.orderRepo.FindLatestForCustomer(ctx, customer.ID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("Order lookup failed during fan-out",
					zap.String("customer_id", customerID.String()),
					zap.Error(err))
			}
			continue
		}

		err = s.api.SendMessage(ctx, token, &marketplace.MessageRequest{
			PackID:   order.MeliPackID,
			SellerID: sellerID,
			BuyerID:  customer.MeliBuyerID,
			Text:     text,
		})
		if err != nil {
			s.logger.Warn("Campaign delivery failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err))
			continue
		}

		sent = append(sent, customerID)
	}

	return sent
}

// campaignMessage builds the templated Spanish notification text
func campaignMessage(discountPercent float64, title string, link *string) string {
	discount := strconv.FormatFloat(discountPercent, 'f', -1, 64)
	url := ""
	if link != nil {
		url = *link
	}
	return fmt.Sprintf("¡Hola! Te ofrecemos un %s%% de descuento en nuestro producto %s. Aprovecha la oferta aquí: %s", discount, title, url)
}
