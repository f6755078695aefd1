package models

import (
	"time"

	"github.com/melihub/backend/internal/domain/identity"
	"github.com/melihub/backend/internal/domain/shared"
)

// UserModel is the persistence model for the User domain entity.
// MeliUserID carries a unique index so one marketplace identity can
// never be linked to two local accounts.
type UserModel struct {
	BaseModel
	Email        string              `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string              `gorm:"type:varchar(255);not null"`
	DisplayName  string              `gorm:"type:varchar(200)"`
	Status       identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`

	MeliUserID         *int64     `gorm:"uniqueIndex"`
	MeliAccessToken    string     `gorm:"type:text"`
	MeliRefreshToken   string     `gorm:"type:text"`
	MeliTokenExpiresAt *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Email:              m.Email,
		PasswordHash:       m.PasswordHash,
		DisplayName:        m.DisplayName,
		Status:             m.Status,
		MeliUserID:         m.MeliUserID,
		MeliAccessToken:    m.MeliAccessToken,
		MeliRefreshToken:   m.MeliRefreshToken,
		MeliTokenExpiresAt: m.MeliTokenExpiresAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Status = u.Status
	m.MeliUserID = u.MeliUserID
	m.MeliAccessToken = u.MeliAccessToken
	m.MeliRefreshToken = u.MeliRefreshToken
	m.MeliTokenExpiresAt = u.MeliTokenExpiresAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
