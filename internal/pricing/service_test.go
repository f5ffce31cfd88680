package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wassel-ops/wassel-backend/internal/clients"
	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	dbtypes "github.com/wassel-ops/wassel-backend/pkg/db/types"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	pkgerrors "github.com/wassel-ops/wassel-backend/pkg/errors"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

type fakeRepo struct {
	Repository

	global        *models.GlobalPricing
	zoneRules     []models.ZonePricingRule
	pkgPricing    map[enums.PackageType]*models.PackageTypePricing
	clientDefault map[uuid.UUID]*models.ClientPricingDefault
	clientZones   map[uuid.UUID][]models.ClientZoneRule
	clientExtras  map[uuid.UUID]map[enums.PackageType]*models.ClientPackageExtra
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pkgPricing:    map[enums.PackageType]*models.PackageTypePricing{},
		clientDefault: map[uuid.UUID]*models.ClientPricingDefault{},
		clientZones:   map[uuid.UUID][]models.ClientZoneRule{},
		clientExtras:  map[uuid.UUID]map[enums.PackageType]*models.ClientPackageExtra{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) GetGlobalPricing(ctx context.Context) (*models.GlobalPricing, error) {
	if f.global == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.global, nil
}

func (f *fakeRepo) ListActiveZoneRules(ctx context.Context, governorateID, cityID *uuid.UUID) ([]models.ZonePricingRule, error) {
	var out []models.ZonePricingRule
	for _, r := range f.zoneRules {
		if !r.Active {
			continue
		}
		if governorateID != nil && r.Scope == enums.ZoneScopeGovernorate && r.RegionID == *governorateID {
			out = append(out, r)
		}
		if cityID != nil && r.Scope == enums.ZoneScopeCity && r.RegionID == *cityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindActivePackageTypePricing(ctx context.Context, pkg enums.PackageType) (*models.PackageTypePricing, error) {
	row, ok := f.pkgPricing[pkg]
	if !ok || !row.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeRepo) FindClientDefault(ctx context.Context, clientID uuid.UUID) (*models.ClientPricingDefault, error) {
	row, ok := f.clientDefault[clientID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeRepo) ListClientZoneRules(ctx context.Context, clientID uuid.UUID) ([]models.ClientZoneRule, error) {
	return f.clientZones[clientID], nil
}

func (f *fakeRepo) FindClientPackageExtra(ctx context.Context, clientID uuid.UUID, pkg enums.PackageType) (*models.ClientPackageExtra, error) {
	byPkg, ok := f.clientExtras[clientID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	row, ok := byPkg[pkg]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

type fakeClients struct {
	clients.Repository

	known map[uuid.UUID]bool
}

func (f *fakeClients) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if !f.known[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Client{ID: id}, nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (fakeTx) WithReadTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// recordingTx counts which transaction mode the service picks.
type recordingTx struct {
	writes int
	reads  int
}

func (r *recordingTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.writes++
	return fn(nil)
}

func (r *recordingTx) WithReadTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.reads++
	return fn(nil)
}

func money(usd string, lbp int64) types.Money {
	return types.NewMoney(usd, lbp)
}

func newTestService(t *testing.T, repo *fakeRepo, clientID uuid.UUID) Service {
	t.Helper()
	svc, err := NewService(repo, &fakeClients{known: map[uuid.UUID]bool{clientID: true}}, fakeTx{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedGlobal(repo *fakeRepo, usd string, lbp int64) {
	m := types.NewMoney(usd, lbp)
	repo.global = &models.GlobalPricing{ID: 1, DefaultFeeUSD: m.USD, DefaultFeeLBP: m.LBP}
}

func TestResolveClientZoneWinsOverDefault(t *testing.T) {
	clientID := uuid.New()
	gov := uuid.New()

	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)
	repo.clientDefault[clientID] = &models.ClientPricingDefault{
		ClientID: clientID,
		FeeUSD:   money("5", 150000).USD,
		FeeLBP:   150000,
	}
	zoneFee := money("8", 240000)
	repo.clientZones[clientID] = []models.ClientZoneRule{{
		ID:           uuid.New(),
		ClientID:     clientID,
		Governorates: dbtypes.UUIDArray{gov},
		FeeUSD:       zoneFee.USD,
		FeeLBP:       zoneFee.LBP,
	}}

	svc := newTestService(t, repo, clientID)

	for _, pkg := range []enums.PackageType{enums.PackageTypeParcel, enums.PackageTypeBulky} {
		res, err := svc.Resolve(context.Background(), ResolveInput{
			ClientID:      clientID,
			GovernorateID: &gov,
			PackageType:   pkg,
		})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if res.Tier != enums.PricingTierClientZone {
			t.Errorf("tier = %v, want client_zone", res.Tier)
		}
		if !res.Fee.Equal(zoneFee) {
			t.Errorf("fee = %+v, want %+v", res.Fee, zoneFee)
		}
	}
}

func TestResolveClientPackageAddsExtra(t *testing.T) {
	clientID := uuid.New()
	gov := uuid.New()

	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)
	def := money("5", 150000)
	repo.clientDefault[clientID] = &models.ClientPricingDefault{ClientID: clientID, FeeUSD: def.USD, FeeLBP: def.LBP}
	extra := money("2", 60000)
	repo.clientExtras[clientID] = map[enums.PackageType]*models.ClientPackageExtra{
		enums.PackageTypeBulky: {ClientID: clientID, PackageType: enums.PackageTypeBulky, ExtraUSD: extra.USD, ExtraLBP: extra.LBP},
	}

	svc := newTestService(t, repo, clientID)

	res, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:      clientID,
		GovernorateID: &gov,
		PackageType:   enums.PackageTypeBulky,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Tier != enums.PricingTierClientPackage {
		t.Errorf("tier = %v, want client_package", res.Tier)
	}
	want := money("7", 210000)
	if !res.Fee.Equal(want) {
		t.Errorf("fee = %+v, want %+v", res.Fee, want)
	}
}

func TestResolveClientDefaultWithoutExtra(t *testing.T) {
	clientID := uuid.New()

	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)
	def := money("5", 150000)
	repo.clientDefault[clientID] = &models.ClientPricingDefault{ClientID: clientID, FeeUSD: def.USD, FeeLBP: def.LBP}

	svc := newTestService(t, repo, clientID)

	res, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:    clientID,
		PackageType: enums.PackageTypeDocument,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Tier != enums.PricingTierClientDefault {
		t.Errorf("tier = %v, want client_default", res.Tier)
	}
	if !res.Fee.Equal(def) {
		t.Errorf("fee = %+v, want %+v", res.Fee, def)
	}
}

func TestResolveGlobalZoneReplacesBase(t *testing.T) {
	clientID := uuid.New()
	gov := uuid.New()

	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)
	zoneFee := money("10", 300000)
	repo.zoneRules = []models.ZonePricingRule{{
		ID:       uuid.New(),
		Scope:    enums.ZoneScopeGovernorate,
		RegionID: gov,
		FeeUSD:   zoneFee.USD,
		FeeLBP:   zoneFee.LBP,
		Active:   true,
	}}

	svc := newTestService(t, repo, clientID)

	res, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:      clientID,
		GovernorateID: &gov,
		PackageType:   enums.PackageTypeParcel,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Tier != enums.PricingTierGlobal {
		t.Errorf("tier = %v, want global", res.Tier)
	}
	if !res.Fee.Equal(zoneFee) {
		t.Errorf("fee = %+v, want %+v (zone replaces base, not adds)", res.Fee, zoneFee)
	}
}

func TestResolveGlobalCityBeatsGovernorate(t *testing.T) {
	clientID := uuid.New()
	gov := uuid.New()
	city := uuid.New()

	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)
	govFee := money("6", 180000)
	cityFee := money("9", 270000)
	repo.zoneRules = []models.ZonePricingRule{
		{ID: uuid.New(), Scope: enums.ZoneScopeGovernorate, RegionID: gov, FeeUSD: govFee.USD, FeeLBP: govFee.LBP, Active: true},
		{ID: uuid.New(), Scope: enums.ZoneScopeCity, RegionID: city, FeeUSD: cityFee.USD, FeeLBP: cityFee.LBP, Active: true},
	}

	svc := newTestService(t, repo, clientID)

	res, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:      clientID,
		GovernorateID: &gov,
		CityID:        &city,
		PackageType:   enums.PackageTypeParcel,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Fee.Equal(cityFee) {
		t.Errorf("fee = %+v, want city rule %+v", res.Fee, cityFee)
	}
}

func TestResolveGlobalAddsPackageExtra(t *testing.T) {
	clientID := uuid.New()

	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)
	extra := money("1.5", 45000)
	repo.pkgPricing[enums.PackageTypeBulky] = &models.PackageTypePricing{
		PackageType: enums.PackageTypeBulky,
		ExtraUSD:    extra.USD,
		ExtraLBP:    extra.LBP,
		Active:      true,
	}

	svc := newTestService(t, repo, clientID)

	res, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:    clientID,
		PackageType: enums.PackageTypeBulky,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := money("4.5", 135000)
	if !res.Fee.Equal(want) {
		t.Errorf("fee = %+v, want %+v", res.Fee, want)
	}
}

func TestResolveInactiveRulesIgnored(t *testing.T) {
	clientID := uuid.New()
	gov := uuid.New()

	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)
	repo.zoneRules = []models.ZonePricingRule{{
		ID:       uuid.New(),
		Scope:    enums.ZoneScopeGovernorate,
		RegionID: gov,
		FeeUSD:   money("10", 300000).USD,
		FeeLBP:   300000,
		Active:   false,
	}}
	repo.pkgPricing[enums.PackageTypeParcel] = &models.PackageTypePricing{
		PackageType: enums.PackageTypeParcel,
		ExtraUSD:    money("2", 60000).USD,
		ExtraLBP:    60000,
		Active:      false,
	}

	svc := newTestService(t, repo, clientID)

	res, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:      clientID,
		GovernorateID: &gov,
		PackageType:   enums.PackageTypeParcel,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := money("3", 90000)
	if !res.Fee.Equal(want) {
		t.Errorf("fee = %+v, want bare global %+v", res.Fee, want)
	}
}

func TestResolveEmptyGovernorateSetNeverMatches(t *testing.T) {
	clientID := uuid.New()
	gov := uuid.New()

	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)
	repo.clientZones[clientID] = []models.ClientZoneRule{{
		ID:           uuid.New(),
		ClientID:     clientID,
		Governorates: dbtypes.UUIDArray{},
		FeeUSD:       money("99", 1).USD,
		FeeLBP:       1,
	}}

	svc := newTestService(t, repo, clientID)

	res, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:      clientID,
		GovernorateID: &gov,
		PackageType:   enums.PackageTypeParcel,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Tier != enums.PricingTierGlobal {
		t.Errorf("tier = %v, want global (empty set matches nothing)", res.Tier)
	}
}

func TestResolveOmittedGovernorateSkipsZoneTiers(t *testing.T) {
	clientID := uuid.New()

	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)
	repo.clientZones[clientID] = []models.ClientZoneRule{{
		ID:           uuid.New(),
		ClientID:     clientID,
		Governorates: dbtypes.UUIDArray{uuid.New()},
		FeeUSD:       money("99", 1).USD,
		FeeLBP:       1,
	}}

	svc := newTestService(t, repo, clientID)

	res, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:    clientID,
		PackageType: enums.PackageTypeParcel,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Tier != enums.PricingTierGlobal {
		t.Errorf("tier = %v, want global", res.Tier)
	}
}

func TestResolveIdempotent(t *testing.T) {
	clientID := uuid.New()

	repo := newFakeRepo()
	seedGlobal(repo, "3.25", 97500)

	svc := newTestService(t, repo, clientID)
	input := ResolveInput{ClientID: clientID, PackageType: enums.PackageTypeParcel}

	first, err := svc.Resolve(context.Background(), input)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := svc.Resolve(context.Background(), input)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.Tier != second.Tier || !first.Fee.Equal(second.Fee) {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestResolveRejectsUnknownClient(t *testing.T) {
	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)

	svc := newTestService(t, repo, uuid.New())

	_, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:    uuid.New(),
		PackageType: enums.PackageTypeParcel,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestResolveRejectsInvalidPackageType(t *testing.T) {
	clientID := uuid.New()
	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)

	svc := newTestService(t, repo, clientID)

	_, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:    clientID,
		PackageType: "envelope",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestResolveMissingGlobalIsAFault(t *testing.T) {
	clientID := uuid.New()
	repo := newFakeRepo()

	svc := newTestService(t, repo, clientID)

	_, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:    clientID,
		PackageType: enums.PackageTypeParcel,
	})
	if err == nil {
		t.Fatal("expected error when global row is missing")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Errorf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestResolveUsesReadSnapshot(t *testing.T) {
	clientID := uuid.New()
	repo := newFakeRepo()
	seedGlobal(repo, "3", 90000)

	tx := &recordingTx{}
	svc, err := NewService(repo, &fakeClients{known: map[uuid.UUID]bool{clientID: true}}, tx, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), ResolveInput{
		ClientID:    clientID,
		PackageType: enums.PackageTypeParcel,
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if tx.reads != 1 {
		t.Errorf("expected one read snapshot, got %d", tx.reads)
	}
	if tx.writes != 0 {
		t.Errorf("resolve must not open a write transaction, got %d", tx.writes)
	}
}
