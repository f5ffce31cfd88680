package payouts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

func setupPayoutsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Each test gets its own in-memory database so state never leaks
	// between tests.
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  reference TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payout_status TEXT NOT NULL DEFAULT 'pending',
  package_type TEXT NOT NULL DEFAULT 'parcel',
  governorate_id TEXT,
  city_id TEXT,
  collected_usd TEXT NOT NULL DEFAULT '0',
  collected_lbp INTEGER NOT NULL DEFAULT 0,
  delivery_fee_usd TEXT NOT NULL DEFAULT '0',
  delivery_fee_lbp INTEGER NOT NULL DEFAULT 0,
  invoice_id TEXT,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	return db
}

func insertOrder(t *testing.T, db *gorm.DB, clientID uuid.UUID, status enums.OrderStatus, payment enums.PaymentStatus, invoiceID *uuid.UUID) *models.Order {
	t.Helper()

	collected := types.NewMoney("20", 600000)
	fee := types.NewMoney("4", 120000)
	order := &models.Order{
		ID:             uuid.New(),
		ClientID:       clientID,
		Reference:      "WSL-" + uuid.NewString()[:8],
		Status:         status,
		PaymentStatus:  payment,
		PayoutStatus:   enums.PayoutStatusPending,
		PackageType:    enums.PackageTypeParcel,
		CollectedUSD:   collected.USD,
		CollectedLBP:   collected.LBP,
		DeliveryFeeUSD: fee.USD,
		DeliveryFeeLBP: fee.LBP,
		InvoiceID:      invoiceID,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestListEligibleAppliesFullPredicate(t *testing.T) {
	db := setupPayoutsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	clientID := uuid.New()
	invoiceID := uuid.New()

	ok := insertOrder(t, db, clientID, enums.OrderStatusSuccessful, enums.PaymentStatusPending, nil)
	insertOrder(t, db, clientID, enums.OrderStatusFailed, enums.PaymentStatusPending, nil)
	insertOrder(t, db, clientID, enums.OrderStatusSuccessful, enums.PaymentStatusPaid, nil)
	// invoiced but payment still pending: must stay excluded
	insertOrder(t, db, clientID, enums.OrderStatusSuccessful, enums.PaymentStatusPending, &invoiceID)

	eligible, err := repo.ListEligible(ctx)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(eligible))
	for _, o := range eligible {
		ids = append(ids, o.ID)
	}
	assert.Contains(t, ids, ok.ID)
	for _, o := range eligible {
		assert.Nil(t, o.InvoiceID)
		assert.Equal(t, enums.OrderStatusSuccessful, o.Status)
		assert.NotEqual(t, enums.PaymentStatusPaid, o.PaymentStatus)
	}
}

func TestListEligibleByClientScopes(t *testing.T) {
	db := setupPayoutsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	clientA := uuid.New()
	clientB := uuid.New()
	insertOrder(t, db, clientA, enums.OrderStatusSuccessful, enums.PaymentStatusPending, nil)
	insertOrder(t, db, clientB, enums.OrderStatusSuccessful, enums.PaymentStatusPending, nil)

	got, err := repo.ListEligibleByClient(ctx, clientA)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, clientA, got[0].ClientID)
}

func TestListClaimedUnsettled(t *testing.T) {
	db := setupPayoutsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	clientID := uuid.New()
	invoiceID := uuid.New()

	claimed := insertOrder(t, db, clientID, enums.OrderStatusSuccessful, enums.PaymentStatusPending, &invoiceID)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", claimed.ID).
		Update("payout_status", enums.PayoutStatusInProgress).Error)

	// Settled history stays out of the audit view.
	settled := insertOrder(t, db, clientID, enums.OrderStatusSuccessful, enums.PaymentStatusPaid, &invoiceID)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", settled.ID).
		Update("payout_status", enums.PayoutStatusPaid).Error)

	got, err := repo.ListClaimedUnsettled(ctx)
	require.NoError(t, err)

	found := false
	for _, o := range got {
		if o.ID == claimed.ID {
			found = true
		}
		assert.NotEqual(t, settled.ID, o.ID)
		assert.Equal(t, enums.PayoutStatusInProgress, o.PayoutStatus)
	}
	assert.True(t, found)
}
