package integration

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/melihub/backend/internal/domain/identity"
	"github.com/melihub/backend/internal/domain/marketplace"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByMeliUserID(ctx context.Context, meliUserID int64) (*identity.User, error) {
	args := m.Called(ctx, meliUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockVerifierStore is a mock implementation of marketplace.VerifierStore
type MockVerifierStore struct {
	mock.Mock
}

func (m *MockVerifierStore) Put(ctx context.Context, userID uuid.UUID, verifier string) error {
	args := m.Called(ctx, userID, verifier)
	return args.Error(0)
}

func (m *MockVerifierStore) Take(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockMarketplaceAPI is a mock implementation of marketplace.API
type MockMarketplaceAPI struct {
	mock.Mock
}

func (m *MockMarketplaceAPI) ExchangeCode(ctx context.Context, grant marketplace.AuthorizationCode) (*marketplace.TokenPair, error) {
	args := m.Called(ctx, grant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.TokenPair), args.Error(1)
}

func (m *MockMarketplaceAPI) RefreshAccessToken(ctx context.Context, refreshToken string) (*marketplace.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.TokenPair), args.Error(1)
}

func (m *MockMarketplaceAPI) SearchOrders(ctx context.Context, accessToken string, sellerID int64) ([]marketplace.Order, error) {
	args := m.Called(ctx, accessToken, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.Order), args.Error(1)
}

func (m *MockMarketplaceAPI) GetOrder(ctx context.Context, accessToken string, orderID int64) (*marketplace.Order, error) {
	args := m.Called(ctx, accessToken, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Order), args.Error(1)
}

func (m *MockMarketplaceAPI) GetShipment(ctx context.Context, accessToken string, shipmentID int64) (*marketplace.Shipment, error) {
	args := m.Called(ctx, accessToken, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Shipment), args.Error(1)
}

func (m *MockMarketplaceAPI) GetSeller(ctx context.Context, accessToken string, sellerID int64) (*marketplace.SellerProfile, error) {
	args := m.Called(ctx, accessToken, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.SellerProfile), args.Error(1)
}

func (m *MockMarketplaceAPI) GetItem(ctx context.Context, accessToken, itemID string) (*marketplace.Item, error) {
	args := m.Called(ctx, accessToken, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Item), args.Error(1)
}

func (m *MockMarketplaceAPI) GetItems(ctx context.Context, accessToken string, itemIDs []string) ([]marketplace.Item, error) {
	args := m.Called(ctx, accessToken, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.Item), args.Error(1)
}

func (m *MockMarketplaceAPI) SearchActiveListings(ctx context.Context, accessToken string, sellerID int64, offset, limit int) (*marketplace.ListingPage, error) {
	args := m.Called(ctx, accessToken, sellerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.ListingPage), args.Error(1)
}

func (m *MockMarketplaceAPI) EligibleItems(ctx context.Context, accessToken string, itemIDs []string, siteID string) ([]string, error) {
	args := m.Called(ctx, accessToken, itemIDs, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMarketplaceAPI) GetPromotion(ctx context.Context, accessToken, promotionID string) (*marketplace.Promotion, error) {
	args := m.Called(ctx, accessToken, promotionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Promotion), args.Error(1)
}

func (m *MockMarketplaceAPI) CreatePromotion(ctx context.Context, accessToken string, req *marketplace.CreatePromotionRequest) (*marketplace.Promotion, error) {
	args := m.Called(ctx, accessToken, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Promotion), args.Error(1)
}

func (m *MockMarketplaceAPI) UpdateItemPrice(ctx context.Context, accessToken, itemID string, price decimal.Decimal) error {
	args := m.Called(ctx, accessToken, itemID, price)
	return args.Error(0)
}

func (m *MockMarketplaceAPI) SendMessage(ctx context.Context, accessToken string, req *marketplace.MessageRequest) error {
	args := m.Called(ctx, accessToken, req)
	return args.Error(0)
}
