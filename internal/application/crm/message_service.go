package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/application/integration"
	"github.com/melihub/backend/internal/domain/crm"
	"github.com/melihub/backend/internal/domain/identity"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/melihub/backend/internal/domain/shared"
	"github.com/melihub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// maxBroadcastConcurrency bounds the parallel sends of a broadcast
const maxBroadcastConcurrency = 8

// BroadcastResult reports a message-all run
type BroadcastResult struct {
	Total  int         `json:"total"`
	Sent   int         `json:"sent"`
	Failed int         `json:"failed"`
	SentTo []uuid.UUID `json:"sent_to"`
}

// MessageService sends post-sale messages to customers through the
// marketplace messaging endpoint. Every message is scoped to the
// customer's most recent recorded order/pack.
type MessageService struct {
	userRepo     identity.UserRepository
	customerRepo crm.CustomerRepository
	orderRepo    crm.OrderRepository
	tokens       *integration.TokenService
	api          marketplace.API
	logger       *zap.Logger
	metrics      *telemetry.IntegrationMetrics
}

// NewMessageService creates a new message service
func NewMessageService(
	userRepo identity.UserRepository,
	customerRepo crm.CustomerRepository,
	orderRepo crm.OrderRepository,
	tokens *integration.TokenService,
	api marketplace.API,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		tokens:       tokens,
		api:          api,
		logger:       logger,
	}
}

// WithMetrics attaches integration metrics to the service
func (s *MessageService) WithMetrics(metrics *telemetry.IntegrationMetrics) *MessageService {
	s.metrics = metrics
	return s
}

// SendToCustomer sends one message to a single customer. Delivery
// failures are surfaced to the caller.
func (s *MessageService) SendToCustomer(ctx context.Context, userID, customerID uuid.UUID, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message text is required", marketplace.ErrInvalidRequest)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	token, err := s.tokens.EnsureForUser(ctx, user)
	if err != nil {
		return err
	}
	if user.MeliUserID == nil {
		return marketplace.ErrNotLinked
	}

	customer, err := s.customerRepo.FindByIDForUser(ctx, userID, customerID)
	if err != nil {
		return err
	}

	return s.deliver(ctx, token, *user.MeliUserID, customer, text)
}

// SendToAll broadcasts one message to every customer of the user.
// Sends run in parallel with bounded concurrency; one recipient's
// failure never blocks the others.
func (s *MessageService) SendToAll(ctx context.Context, userID uuid.UUID, text string) (*BroadcastResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: message text is required", marketplace.ErrInvalidRequest)
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

	customers, err := s.customerRepo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &BroadcastResult{Total: len(customers)}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxBroadcastConcurrency)

	for i := range customers {
		customer := customers[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			err := s.deliver(ctx, token, sellerID, &customer, text)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				s.logger.Warn("Broadcast delivery failed",
					zap.String("customer_id", customer.ID.String()),
					zap.Error(err))
				return
			}
			result.Sent++
			result.SentTo = append(result.SentTo, customer.ID)
		}()
	}
	wg.Wait()

	s.logger.Info("Broadcast completed",
		zap.String("user_id", userID.String()),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))

	return result, nil
}

// deliver resolves the customer's most recent order and sends the
// message scoped to its pack
func (s *MessageService) deliver(ctx context.Context, token string, sellerID int64, customer *crm.Customer, text string) error {
	order, err := s.orderRepo.FindLatestForCustomer(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NO_ORDER_HISTORY", "Customer has no order to attach a message to")
		}
		return err
	}

	err = s.api.SendMessage(ctx, token, &marketplace.MessageRequest{
		PackID:   order.MeliPackID,
		SellerID: sellerID,
		BuyerID:  customer.MeliBuyerID,
		Text:     text,
	})
	if err != nil {
		s.metrics.RecordMessage(ctx, telemetry.OutcomeFailure)
		return err
	}
	s.metrics.RecordMessage(ctx, telemetry.OutcomeSuccess)
	return nil
}
