package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	dbtypes "github.com/wassel-ops/wassel-backend/pkg/db/types"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

func setupPricingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Each test gets its own in-memory database so state never leaks
	// between tests.
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clients (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  business_name TEXT NOT NULL,
  phone TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS global_pricing (
  id INTEGER PRIMARY KEY,
  default_fee_usd TEXT NOT NULL,
  default_fee_lbp INTEGER NOT NULL,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS zone_pricing_rules (
  id TEXT PRIMARY KEY,
  scope TEXT NOT NULL,
  region_id TEXT NOT NULL,
  package_type TEXT,
  fee_usd TEXT NOT NULL,
  fee_lbp INTEGER NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS package_type_pricing (
  id TEXT PRIMARY KEY,
  package_type TEXT NOT NULL UNIQUE,
  extra_usd TEXT NOT NULL,
  extra_lbp INTEGER NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS client_pricing_defaults (
  client_id TEXT PRIMARY KEY,
  fee_usd TEXT NOT NULL,
  fee_lbp INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS client_zone_rules (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  name TEXT,
  governorates TEXT,
  fee_usd TEXT NOT NULL,
  fee_lbp INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS client_package_extras (
  client_id TEXT NOT NULL,
  package_type TEXT NOT NULL,
  extra_usd TEXT NOT NULL,
  extra_lbp INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  PRIMARY KEY (client_id, package_type)
);`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestUpsertClientDefaultIsIdempotent(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	clientID := uuid.New()

	first := types.NewMoney("5", 150000)
	require.NoError(t, repo.UpsertClientDefault(ctx, &models.ClientPricingDefault{
		ClientID: clientID,
		FeeUSD:   first.USD,
		FeeLBP:   first.LBP,
	}))

	second := types.NewMoney("6.5", 195000)
	require.NoError(t, repo.UpsertClientDefault(ctx, &models.ClientPricingDefault{
		ClientID: clientID,
		FeeUSD:   second.USD,
		FeeLBP:   second.LBP,
	}))

	var count int64
	require.NoError(t, db.Model(&models.ClientPricingDefault{}).Where("client_id = ?", clientID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	row, err := repo.FindClientDefault(ctx, clientID)
	require.NoError(t, err)
	assert.True(t, row.FeeUSD.Equal(second.USD))
	assert.Equal(t, second.LBP, row.FeeLBP)
}

func TestUpsertClientPackageExtraKeyedByPair(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	clientID := uuid.New()

	parcel := types.NewMoney("1", 30000)
	bulky := types.NewMoney("2", 60000)
	require.NoError(t, repo.UpsertClientPackageExtra(ctx, &models.ClientPackageExtra{
		ClientID: clientID, PackageType: enums.PackageTypeParcel, ExtraUSD: parcel.USD, ExtraLBP: parcel.LBP,
	}))
	require.NoError(t, repo.UpsertClientPackageExtra(ctx, &models.ClientPackageExtra{
		ClientID: clientID, PackageType: enums.PackageTypeBulky, ExtraUSD: bulky.USD, ExtraLBP: bulky.LBP,
	}))

	rows, err := repo.ListClientPackageExtras(ctx, clientID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	updated := types.NewMoney("3", 90000)
	require.NoError(t, repo.UpsertClientPackageExtra(ctx, &models.ClientPackageExtra{
		ClientID: clientID, PackageType: enums.PackageTypeBulky, ExtraUSD: updated.USD, ExtraLBP: updated.LBP,
	}))

	row, err := repo.FindClientPackageExtra(ctx, clientID, enums.PackageTypeBulky)
	require.NoError(t, err)
	assert.True(t, row.ExtraUSD.Equal(updated.USD))
}

func TestListActiveZoneRulesFiltersScopeAndActive(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	gov := uuid.New()
	city := uuid.New()
	fee := types.NewMoney("10", 300000)

	active := &models.ZonePricingRule{
		ID: uuid.New(), Scope: enums.ZoneScopeGovernorate, RegionID: gov,
		FeeUSD: fee.USD, FeeLBP: fee.LBP, Active: true,
	}
	inactive := &models.ZonePricingRule{
		ID: uuid.New(), Scope: enums.ZoneScopeGovernorate, RegionID: gov,
		FeeUSD: fee.USD, FeeLBP: fee.LBP, Active: false,
	}
	cityRule := &models.ZonePricingRule{
		ID: uuid.New(), Scope: enums.ZoneScopeCity, RegionID: city,
		FeeUSD: fee.USD, FeeLBP: fee.LBP, Active: true,
	}
	require.NoError(t, repo.CreateZoneRule(ctx, active))
	require.NoError(t, repo.CreateZoneRule(ctx, inactive))
	require.NoError(t, repo.CreateZoneRule(ctx, cityRule))

	rules, err := repo.ListActiveZoneRules(ctx, &gov, nil)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, active.ID, rules[0].ID)

	rules, err = repo.ListActiveZoneRules(ctx, &gov, &city)
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	rules, err = repo.ListActiveZoneRules(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestInactiveRowsPersistInactive(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	fee := types.NewMoney("10", 300000)
	rule := &models.ZonePricingRule{
		ID: uuid.New(), Scope: enums.ZoneScopeGovernorate, RegionID: uuid.New(),
		FeeUSD: fee.USD, FeeLBP: fee.LBP, Active: false,
	}
	require.NoError(t, repo.CreateZoneRule(ctx, rule))

	rules, err := repo.ListZoneRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.False(t, rules[0].Active)

	extra := types.NewMoney("2", 60000)
	require.NoError(t, repo.UpsertPackageTypePricing(ctx, &models.PackageTypePricing{
		ID: uuid.New(), PackageType: enums.PackageTypeBulky,
		ExtraUSD: extra.USD, ExtraLBP: extra.LBP, Active: true,
	}))
	require.NoError(t, repo.UpsertPackageTypePricing(ctx, &models.PackageTypePricing{
		ID: uuid.New(), PackageType: enums.PackageTypeBulky,
		ExtraUSD: extra.USD, ExtraLBP: extra.LBP, Active: false,
	}))

	_, err = repo.FindActivePackageTypePricing(ctx, enums.PackageTypeBulky)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	rows, err := repo.ListPackageTypePricing(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Active)
}

func TestClientZoneRuleGovernoratesRoundTrip(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	govA := uuid.New()
	govB := uuid.New()
	fee := types.NewMoney("8", 240000)

	rule := &models.ClientZoneRule{
		ID:           uuid.New(),
		ClientID:     clientID,
		Governorates: dbtypes.UUIDArray{govA, govB},
		FeeUSD:       fee.USD,
		FeeLBP:       fee.LBP,
	}
	require.NoError(t, repo.CreateClientZoneRule(ctx, rule))

	got, err := repo.FindClientZoneRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.True(t, got.Governorates.Contains(govA))
	assert.True(t, got.Governorates.Contains(govB))
	assert.False(t, got.Governorates.Contains(uuid.New()))
}

func TestDeleteClientScopedTables(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	fee := types.NewMoney("5", 150000)

	require.NoError(t, repo.UpsertClientDefault(ctx, &models.ClientPricingDefault{
		ClientID: clientID, FeeUSD: fee.USD, FeeLBP: fee.LBP,
	}))
	require.NoError(t, repo.CreateClientZoneRule(ctx, &models.ClientZoneRule{
		ID: uuid.New(), ClientID: clientID, Governorates: dbtypes.UUIDArray{uuid.New()},
		FeeUSD: fee.USD, FeeLBP: fee.LBP,
	}))
	require.NoError(t, repo.UpsertClientPackageExtra(ctx, &models.ClientPackageExtra{
		ClientID: clientID, PackageType: enums.PackageTypeParcel, ExtraUSD: fee.USD, ExtraLBP: fee.LBP,
	}))

	require.NoError(t, repo.DeleteClientDefault(ctx, clientID))
	require.NoError(t, repo.DeleteClientZoneRules(ctx, clientID))
	require.NoError(t, repo.DeleteClientPackageExtras(ctx, clientID))

	_, err := repo.FindClientDefault(ctx, clientID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	rules, err := repo.ListClientZoneRules(ctx, clientID)
	require.NoError(t, err)
	assert.Empty(t, rules)

	extras, err := repo.ListClientPackageExtras(ctx, clientID)
	require.NoError(t, err)
	assert.Empty(t, extras)
}
