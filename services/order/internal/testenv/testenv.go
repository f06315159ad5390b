// Package testenv opens an isolated in-memory database for package tests.
package testenv

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

// NewDB returns a fresh schema per test. A single connection keeps the
// in-memory database alive and serializes concurrent transactions.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentBinding{},
	))
	return db
}

type ProductOption func(*models.Product)

func WithFee(cents int64) ProductOption {
	return func(p *models.Product) { p.LocalDeliveryFeeCents = &cents }
}

func Inactive() ProductOption {
	return func(p *models.Product) { p.Active = false }
}

// SeedProduct inserts an active product owned by seller.
func SeedProduct(t *testing.T, db *gorm.DB, seller uuid.UUID, name string, priceCents, quantity int64, opts ...ProductOption) models.Product {
	t.Helper()

	p := models.Product{
		SellerID:   seller,
		Name:       name,
		PriceCents: priceCents,
		Quantity:   quantity,
		Active:     true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	require.NoError(t, db.Create(&p).Error)
	if !p.Active {
		require.NoError(t, db.Model(&p).Update("active", false).Error)
	}
	return p
}

// Quantity reads the current stock of a product.
func Quantity(t *testing.T, db *gorm.DB, id uuid.UUID) int64 {
	t.Helper()

	var p models.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.Quantity
}
