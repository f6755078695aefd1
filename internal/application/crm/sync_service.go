package crm

import (
	"context"
	"errors"
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

// SyncService pulls the seller's marketplace orders, enriches missing
// buyer and shipping fields through follow-up calls, folds the feed
// into per-buyer aggregates and upserts one customer row per buyer.
type SyncService struct {
	userRepo     identity.UserRepository
	customerRepo crm.CustomerRepository
	orderRepo    crm.OrderRepository
	tokens       *integration.TokenService
	api          marketplace.API
	cache        SummaryCache
	logger       *zap.Logger
	metrics      *telemetry.IntegrationMetrics
}

// NewSyncService creates a new order sync service. cache may be nil
// when no summary cache is configured.
func NewSyncService(
	userRepo identity.UserRepository,
	customerRepo crm.CustomerRepository,
	orderRepo crm.OrderRepository,
	tokens *integration.TokenService,
	api marketplace.API,
	cache SummaryCache,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		tokens:       tokens,
		api:          api,
		cache:        cache,
		logger:       logger,
	}
}

// WithMetrics attaches integration metrics to the service
func (s *SyncService) WithMetrics(metrics *telemetry.IntegrationMetrics) *SyncService {
	s.metrics = metrics
	return s
}

// buyerProfile is the per-buyer enrichment state cached within one sync
// run so multiple orders from the same buyer cost one detail fetch.
type buyerProfile struct {
	nickname  string
	firstName *string
	lastName  *string
	email     *string
	fetched   bool
}

// buyerAggregate is the running per-buyer fold over the order feed
type buyerAggregate struct {
	buyerID            int64
	purchaseCount      int
	lastOrderID        int64
	lastOrderDate      time.Time
	lastShippingMethod *string
	lastProvince       *string
}

// recordedOrder is an order queued for local persistence after its
// customer row exists
type recordedOrder struct {
	buyerID int64
	orderID int64
	packID  int64
	date    time.Time
}

// SyncOrders runs one full aggregation pass for the user and returns
// the user's customers annotated with freshly derived aggregates.
func (s *SyncService) SyncOrders(ctx context.Context, userID uuid.UUID) ([]crm.CustomerSummary, error) {
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

	orders, err := s.api.SearchOrders(ctx, token, sellerID)
	if err != nil {
		return nil, err
	}

	profiles := make(map[int64]*buyerProfile)
	aggregates := make(map[int64]*buyerAggregate)
	var buyerOrder []int64
	var recorded []recordedOrder
	skipped := 0

	for i := range orders {
		order := orders[i]
		if order.Buyer.ID == 0 {
			skipped++
			s.logger.Warn("Skipping order without identifiable buyer",
				zap.Int64("order_id", order.ID),
				zap.String("user_id", userID.String()))
			continue
		}

		s.enrich(ctx, token, &order, profiles)

		agg, ok := aggregates[order.Buyer.ID]
		if !ok {
			agg = &buyerAggregate{buyerID: order.Buyer.ID}
			aggregates[order.Buyer.ID] = agg
			buyerOrder = append(buyerOrder, order.Buyer.ID)
		}
		agg.purchaseCount++
		// Strictly newer orders take over the last-order fields; equal
		// dates keep the first-seen value.
		if agg.lastOrderID == 0 || order.DateCreated.After(agg.lastOrderDate) {
			agg.lastOrderID = order.ID
			agg.lastOrderDate = order.DateCreated
			agg.lastShippingMethod = order.Shipping.Method
			agg.lastProvince = order.Shipping.Province
		}

		recorded = append(recorded, recordedOrder{
			buyerID: order.Buyer.ID,
			orderID: order.ID,
			packID:  order.MessagePackID(),
			date:    order.DateCreated,
		})
	}

	customers, err := s.upsertCustomers(ctx, userID, buyerOrder, profiles)
	if err != nil {
		return nil, err
	}

	s.recordOrders(ctx, userID, recorded, customers)

	summaries, err := s.buildSummaries(ctx, userID, aggregates)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, userID, summaries); err != nil {
			s.logger.Warn("Failed to cache customer summaries", zap.Error(err))
		}
	}

	s.logger.Info("Order sync completed",
		zap.String("user_id", userID.String()),
		zap.Int("orders", len(orders)),
		zap.Int("orders_skipped", skipped),
		zap.Int("buyers", len(buyerOrder)))
	s.metrics.RecordSyncRun(ctx, telemetry.OutcomeSuccess, len(orders)-skipped)

	return summaries, nil
}

// enrich fills missing buyer and shipping fields on the order, merging
// each fallible source first-non-nil-wins per field: the summary itself,
// the order detail (cached per buyer), then the shipment detail.
func (s *SyncService) enrich(ctx context.Context, token string, order *marketplace.Order, profiles map[int64]*buyerProfile) {
	profile, ok := profiles[order.Buyer.ID]
	if !ok {
		profile = &buyerProfile{nickname: order.Buyer.Nickname}
		profiles[order.Buyer.ID] = profile
	}
	mergeBuyer(&order.Buyer, profile)

	if s.orderNeedsDetail(order, profile) {
		detail, err := s.api.GetOrder(ctx, token, order.ID)
		if err != nil {
			s.logger.Warn("Order detail enrichment failed",
				zap.Int64("order_id", order.ID),
				zap.Error(err))
		} else {
			mergeOrder(order, detail)
		}
		profile.fetched = true
		profile.nickname = order.Buyer.Nickname
		profile.firstName = order.Buyer.FirstName
		profile.lastName = order.Buyer.LastName
		profile.email = order.Buyer.Email
	}

	if (order.Shipping.Method == nil || order.Shipping.Province == nil) && order.Shipping.ShipmentID != nil {
		shipment, err := s.api.GetShipment(ctx, token, *order.Shipping.ShipmentID)
		if err != nil {
			s.logger.Warn("Shipment detail enrichment failed",
				zap.Int64("shipment_id", *order.Shipping.ShipmentID),
				zap.Error(err))
			return
		}
		if order.Shipping.Method == nil {
			order.Shipping.Method = shipment.Method
		}
		if order.Shipping.Province == nil {
			order.Shipping.Province = shipment.Province
		}
	}
}

// orderNeedsDetail reports whether a detail fetch can still fill fields
// the cheaper sources left open
func (s *SyncService) orderNeedsDetail(order *marketplace.Order, profile *buyerProfile) bool {
	profileIncomplete := order.Buyer.FirstName == nil || order.Buyer.LastName == nil || order.Buyer.Email == nil
	shippingIncomplete := order.Shipping.Method == nil || order.Shipping.Province == nil
	if profileIncomplete && !profile.fetched {
		return true
	}
	return shippingIncomplete
}

func mergeBuyer(buyer *marketplace.Buyer, profile *buyerProfile) {
	if buyer.Nickname == "" {
		buyer.Nickname = profile.nickname
	}
	if buyer.FirstName == nil {
		buyer.FirstName = profile.firstName
	}
	if buyer.LastName == nil {
		buyer.LastName = profile.lastName
	}
	if buyer.Email == nil {
		buyer.Email = profile.email
	}
}

func mergeOrder(order, detail *marketplace.Order) {
	if order.Buyer.Nickname == "" {
		order.Buyer.Nickname = detail.Buyer.Nickname
	}
	if order.Buyer.FirstName == nil {
		order.Buyer.FirstName = detail.Buyer.FirstName
	}
	if order.Buyer.LastName == nil {
		order.Buyer.LastName = detail.Buyer.LastName
	}
	if order.Buyer.Email == nil {
		order.Buyer.Email = detail.Buyer.Email
	}
	if order.Shipping.ShipmentID == nil {
		order.Shipping.ShipmentID = detail.Shipping.ShipmentID
	}
	if order.Shipping.Method == nil {
		order.Shipping.Method = detail.Shipping.Method
	}
	if order.Shipping.Province == nil {
		order.Shipping.Province = detail.Shipping.Province
	}
	if order.PackID == nil {
		order.PackID = detail.PackID
	}
}

// upsertCustomers creates or updates one customer row per distinct
// buyer, in feed order, and returns them keyed by buyer id.
func (s *SyncService) upsertCustomers(ctx context.Context, userID uuid.UUID, buyerOrder []int64, profiles map[int64]*buyerProfile) (map[int64]*crm.Customer, error) {
	customers := make(map[int64]*crm.Customer, len(buyerOrder))

	for _, buyerID := range buyerOrder {
		profile := profiles[buyerID]

		customer, err := s.customerRepo.FindByBuyer(ctx, userID, buyerID)
		switch {
		case err == nil:
			customer.UpdateProfile(profile.nickname, profile.firstName, profile.lastName, profile.email)
		case errors.Is(err, shared.ErrNotFound):
			customer, err = crm.NewCustomer(userID, buyerID, profile.nickname)
			if err != nil {
				return nil, err
			}
			customer.UpdateProfile(profile.nickname, profile.firstName, profile.lastName, profile.email)
		default:
			return nil, err
		}

		if err := s.customerRepo.Save(ctx, customer); err != nil {
			return nil, err
		}
		customers[buyerID] = customer
	}

	return customers, nil
}

// recordOrders persists the purchase events so messaging can find each
// customer's most recent order. Failures are logged, not fatal: the
// aggregate result is already correct.
func (s *SyncService) recordOrders(ctx context.Context, userID uuid.UUID, recorded []recordedOrder, customers map[int64]*crm.Customer) {
	for _, rec := range recorded {
		customer, ok := customers[rec.buyerID]
		if !ok {
			continue
		}
		order, err := crm.NewOrder(userID, customer.ID, rec.orderID, rec.packID, rec.date)
		if err != nil {
			s.logger.Warn("Skipping unrecordable order", zap.Int64("order_id", rec.orderID), zap.Error(err))
			continue
		}
		if err := s.orderRepo.Upsert(ctx, order); err != nil {
			s.logger.Warn("Failed to record order", zap.Int64("order_id", rec.orderID), zap.Error(err))
		}
	}
}

// buildSummaries annotates the user's full customer set with the
// aggregates derived in this run. Customers absent from the current
// feed carry zero aggregates.
func (s *SyncService) buildSummaries(ctx context.Context, userID uuid.UUID, aggregates map[int64]*buyerAggregate) ([]crm.CustomerSummary, error) {
	customers, err := s.customerRepo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]crm.CustomerSummary, 0, len(customers))
	for i := range customers {
		summary := crm.CustomerSummary{Customer: customers[i]}
		if agg, ok := aggregates[customers[i].MeliBuyerID]; ok {
			summary.PurchaseCount = agg.purchaseCount
			summary.LastOrderID = agg.lastOrderID
			summary.LastOrderDate = agg.lastOrderDate
			summary.LastShippingMethod = agg.lastShippingMethod
			summary.LastProvince = agg.lastProvince
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
