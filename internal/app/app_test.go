package app

import (
	"context"
	"testing"

	"storepos/internal/config"
	"storepos/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type recorder struct{ events []string }

func (r *recorder) Publish(event string, data map[string]interface{}) {
	r.events = append(r.events, event)
}

func TestNewWiresEveryService(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=pos dbname=pos sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	cfg := config.Config{StoreName: "CORNER STORE", ReceiptDir: t.TempDir(), SearchLimit: 10, ReorderLevel: 5, DefaultTaxRate: money.MustParse("18.00")}
	a := New(cfg, db, &recorder{})

	assert.NotNil(t, a.Engine)
	assert.Equal(t, "CORNER STORE", a.Receipts.Seller)
	assert.NotNil(t, a.Services.Users)
	assert.NotNil(t, a.Services.Catalog)
	assert.NotNil(t, a.Services.Customers)
	assert.NotNil(t, a.Services.Checkout)
	assert.NotNil(t, a.Services.Reports)
	assert.NotNil(t, a.Services.Reorders)
	assert.NotNil(t, a.Services.Audit)

	// nothing configured to bootstrap
	assert.NoError(t, a.Bootstrap(context.Background()))
}
