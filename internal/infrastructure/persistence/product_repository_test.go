package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/crm"
	"github.com/melihub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockProductRepository creates a GormProductRepository with a mocked SQL connection
func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormProductRepository(gormDB), mock, mockDB
}

func productRows(id, userID uuid.UUID, itemID string, promotionID *string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "user_id", "meli_item_id",
		"title", "price", "permalink", "promotion_id", "promotion_link", "promotion_expires_at",
	}).AddRow(id, now, now, userID, itemID,
		"Wireless Mouse", decimal.NewFromFloat(1999.99), "https://articulo.mercadolibre.com.ar/MLA-123",
		promotionID, nil, nil)
}

func TestGormProductRepository_Save(t *testing.T) {
	t.Run("upserts on the user and item pair", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		product, err := crm.NewProduct(uuid.New(), "MLA123456789", "Wireless Mouse",
			decimal.NewFromFloat(1999.99), "https://articulo.mercadolibre.com.ar/MLA-123")
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "products" .* ON CONFLICT \("user_id","meli_item_id"\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), product)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindByItem(t *testing.T) {
	t.Run("finds the row for a user and item pair", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		userID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE user_id = \$1 AND meli_item_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(userID, "MLA123456789", 1).
			WillReturnRows(productRows(productID, userID, "MLA123456789", nil))

		product, err := repo.FindByItem(context.Background(), userID, "MLA123456789")

		require.NoError(t, err)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, "MLA123456789", product.MeliItemID)
		assert.Nil(t, product.PromotionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("trims whitespace from the item id", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		userID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE user_id = \$1 AND meli_item_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(userID, "MLA123456789", 1).
			WillReturnRows(productRows(productID, userID, "MLA123456789", nil))

		product, err := repo.FindByItem(context.Background(), userID, "  MLA123456789  ")

		require.NoError(t, err)
		assert.Equal(t, productID, product.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for an untracked item", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE user_id = \$1 AND meli_item_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(userID, "MLA000", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByItem(context.Background(), userID, "MLA000")

		assert.Nil(t, product)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindAllForUser(t *testing.T) {
	t.Run("returns all product records of the user", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		promotionID := "P-MLA-1"
		now := time.Now()
		rows := sqlmock.NewRows([]string{
			"id", "created_at", "updated_at", "user_id", "meli_item_id",
			"title", "price", "permalink", "promotion_id", "promotion_link", "promotion_expires_at",
		}).
			AddRow(uuid.New(), now, now, userID, "MLA1", "A", decimal.NewFromInt(100), "", &promotionID, nil, now.Add(24*time.Hour)).
			AddRow(uuid.New(), now, now, userID, "MLA2", "B", decimal.NewFromInt(200), "", nil, nil, nil)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE user_id = \$1 ORDER BY created_at DESC`).
			WithArgs(userID).
			WillReturnRows(rows)

		products, err := repo.FindAllForUser(context.Background(), userID)

		require.NoError(t, err)
		require.Len(t, products, 2)
		require.NotNil(t, products[0].PromotionID)
		assert.Equal(t, "P-MLA-1", *products[0].PromotionID)
		assert.Nil(t, products[1].PromotionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
