package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/crm"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer domain entity.
// The (user_id, meli_buyer_id) pair is unique: one row per buyer per
// local account.
type CustomerModel struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_customers_user_buyer"`
	MeliBuyerID int64     `gorm:"not null;uniqueIndex:idx_customers_user_buyer"`
	Nickname    string    `gorm:"type:varchar(200)"`
	FirstName   *string   `gorm:"type:varchar(200)"`
	LastName    *string   `gorm:"type:varchar(200)"`
	Email       *string   `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *crm.Customer {
	return &crm.Customer{
		BaseEntity:  m.BaseModel.ToDomain(),
		UserID:      m.UserID,
		MeliBuyerID: m.MeliBuyerID,
		Nickname:    m.Nickname,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *crm.Customer) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.UserID = c.UserID
	m.MeliBuyerID = c.MeliBuyerID
	m.Nickname = c.Nickname
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Email = c.Email
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *crm.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// OrderModel is the persistence model for the local Order record.
// The (user_id, meli_order_id) pair is unique so repeated sync runs
// update rather than duplicate.
type OrderModel struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_orders_user_order"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	MeliOrderID int64     `gorm:"not null;uniqueIndex:idx_orders_user_order"`
	MeliPackID  int64     `gorm:"not null"`
	OrderDate   time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *crm.Order {
	return &crm.Order{
		BaseEntity:  m.BaseModel.ToDomain(),
		UserID:      m.UserID,
		CustomerID:  m.CustomerID,
		MeliOrderID: m.MeliOrderID,
		MeliPackID:  m.MeliPackID,
		OrderDate:   m.OrderDate,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *crm.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.UserID = o.UserID
	m.CustomerID = o.CustomerID
	m.MeliOrderID = o.MeliOrderID
	m.MeliPackID = o.MeliPackID
	m.OrderDate = o.OrderDate
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *crm.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// ProductModel is the persistence model for the Product domain entity.
// The (user_id, meli_item_id) pair is unique: one row per listing per
// local account, promotion metadata overwritten in place.
type ProductModel struct {
	BaseModel
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_products_user_item"`
	MeliItemID string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_user_item"`
	Title      string          `gorm:"type:varchar(500)"`
	Price      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Permalink  string          `gorm:"type:varchar(500)"`

	PromotionID        *string `gorm:"type:varchar(100)"`
	PromotionLink      *string `gorm:"type:varchar(500)"`
	PromotionExpiresAt *time.Time
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *crm.Product {
	return &crm.Product{
		BaseEntity:         m.BaseModel.ToDomain(),
		UserID:             m.UserID,
		MeliItemID:         m.MeliItemID,
		Title:              m.Title,
		Price:              m.Price,
		Permalink:          m.Permalink,
		PromotionID:        m.PromotionID,
		PromotionLink:      m.PromotionLink,
		PromotionExpiresAt: m.PromotionExpiresAt,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *crm.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.UserID = p.UserID
	m.MeliItemID = p.MeliItemID
	m.Title = p.Title
	m.Price = p.Price
	m.Permalink = p.Permalink
	m.PromotionID = p.PromotionID
	m.PromotionLink = p.PromotionLink
	m.PromotionExpiresAt = p.PromotionExpiresAt
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *crm.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
