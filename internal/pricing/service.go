package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wassel-ops/wassel-backend/internal/clients"
	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	dbtypes "github.com/wassel-ops/wassel-backend/pkg/db/types"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	pkgerrors "github.com/wassel-ops/wassel-backend/pkg/errors"
	"github.com/wassel-ops/wassel-backend/pkg/metrics"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	// WithReadTx runs fn in a read-only snapshot so tier lookups that span
	// several statements cannot observe a concurrent rule write in between.
	WithReadTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service resolves delivery fees and manages the pricing rule tables.
type Service interface {
	Resolve(ctx context.Context, input ResolveInput) (*Resolution, error)

	GetGlobalPricing(ctx context.Context) (*models.GlobalPricing, error)
	SetGlobalPricing(ctx context.Context, input GlobalPricingInput) (*models.GlobalPricing, error)

	ListZoneRules(ctx context.Context) ([]models.ZonePricingRule, error)
	UpsertZoneRule(ctx context.Context, input ZoneRuleInput) (*models.ZonePricingRule, error)
	DeleteZoneRule(ctx context.Context, id uuid.UUID) error

	ListPackageTypePricing(ctx context.Context) ([]models.PackageTypePricing, error)
	UpsertPackageTypePricing(ctx context.Context, input PackageTypePricingInput) (*models.PackageTypePricing, error)

	GetClientConfiguration(ctx context.Context, clientID uuid.UUID) (*ClientConfiguration, error)
	UpsertClientDefault(ctx context.Context, input ClientDefaultInput) (*models.ClientPricingDefault, error)
	UpsertClientZoneRule(ctx context.Context, input ClientZoneRuleInput) (*models.ClientZoneRule, error)
	DeleteClientZoneRule(ctx context.Context, clientID, ruleID uuid.UUID) error
	UpsertClientPackageExtra(ctx context.Context, input ClientPackageExtraInput) (*models.ClientPackageExtra, error)
	DeleteClientConfiguration(ctx context.Context, clientID uuid.UUID) error
}

type service struct {
	repo    Repository
	clients clients.Repository
	tx      txRunner
	metrics *metrics.PricingMetrics
}

// NewService builds a pricing service with the required dependencies.
func NewService(repo Repository, clientsRepo clients.Repository, tx txRunner, m *metrics.PricingMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	if clientsRepo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		clients: clientsRepo,
		tx:      tx,
		metrics: m,
	}, nil
}

// Resolve walks the precedence tiers top to bottom and returns the first
// match. Tiers never blend: a winning tier's fee is the whole answer. All
// reads happen inside one transaction so the result reflects a single
// snapshot of the rule tables.
func (s *service) Resolve(ctx context.Context, input ResolveInput) (*Resolution, error) {
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if !input.PackageType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid package type %q", input.PackageType))
	}

	if _, err := s.clients.FindByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, err
	}

	var res *Resolution
	err := s.tx.WithReadTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		res, err = s.resolveInTx(ctx, repo, input)
		return err
	})
	if err != nil {
		s.metrics.IncFailure()
		return nil, err
	}

	s.metrics.IncResolved(res.Tier.String())
	return res, nil
}

func (s *service) resolveInTx(ctx context.Context, repo Repository, input ResolveInput) (*Resolution, error) {
	// Tier 1: client zone rule whose governorate set contains the request's
	// governorate. An empty set never matches.
	if input.GovernorateID != nil {
		rules, err := repo.ListClientZoneRules(ctx, input.ClientID)
		if err != nil {
			return nil, err
		}
		for _, rule := range rules {
			if rule.Governorates.Contains(*input.GovernorateID) {
				return &Resolution{
					Fee:  types.Money{USD: rule.FeeUSD, LBP: rule.FeeLBP},
					Tier: enums.PricingTierClientZone,
				}, nil
			}
		}
	}

	// Tiers 2 and 3: client default, optionally plus the client's package
	// extra. A missing default row is a fall-through, not a fault.
	def, err := repo.FindClientDefault(ctx, input.ClientID)
	switch {
	case err == nil:
		fee := types.Money{USD: def.FeeUSD, LBP: def.FeeLBP}

		extra, err := repo.FindClientPackageExtra(ctx, input.ClientID, input.PackageType)
		if err == nil {
			return &Resolution{
				Fee:  fee.Add(types.Money{USD: extra.ExtraUSD, LBP: extra.ExtraLBP}),
				Tier: enums.PricingTierClientPackage,
			}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return &Resolution{Fee: fee, Tier: enums.PricingTierClientDefault}, nil

	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	// Tier 4: global base, replaced by a matching active zone override, plus
	// any active package-type extra. The seeded singleton makes a missing
	// global row a storage fault rather than an empty result.
	global, err := repo.GetGlobalPricing(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "global pricing row missing")
	}
	fee := types.Money{USD: global.DefaultFeeUSD, LBP: global.DefaultFeeLBP}

	if input.GovernorateID != nil || input.CityID != nil {
		zoneRules, err := repo.ListActiveZoneRules(ctx, input.GovernorateID, input.CityID)
		if err != nil {
			return nil, err
		}
		if best := pickZoneRule(zoneRules, input.PackageType); best != nil {
			fee = types.Money{USD: best.FeeUSD, LBP: best.FeeLBP}
		}
	}

	extra, err := repo.FindActivePackageTypePricing(ctx, input.PackageType)
	switch {
	case err == nil:
		fee = fee.Add(types.Money{USD: extra.ExtraUSD, LBP: extra.ExtraLBP})
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	return &Resolution{Fee: fee, Tier: enums.PricingTierGlobal}, nil
}

// pickZoneRule chooses the most specific applicable override: city beats
// governorate, and within a scope a package-typed rule beats an untyped one.
func pickZoneRule(rules []models.ZonePricingRule, pkg enums.PackageType) *models.ZonePricingRule {
	var best *models.ZonePricingRule
	bestRank := -1
	for i := range rules {
		rule := &rules[i]
		if rule.PackageType != nil && *rule.PackageType != pkg {
			continue
		}
		rank := 0
		if rule.Scope == enums.ZoneScopeCity {
			rank += 2
		}
		if rule.PackageType != nil {
			rank++
		}
		if rank > bestRank {
			best = rule
			bestRank = rank
		}
	}
	return best
}

func (s *service) GetGlobalPricing(ctx context.Context) (*models.GlobalPricing, error) {
	return s.repo.GetGlobalPricing(ctx)
}

func (s *service) SetGlobalPricing(ctx context.Context, input GlobalPricingInput) (*models.GlobalPricing, error) {
	row := &models.GlobalPricing{
		ID:            1,
		DefaultFeeUSD: input.Fee.USD,
		DefaultFeeLBP: input.Fee.LBP,
	}
	if err := s.repo.UpdateGlobalPricing(ctx, row); err != nil {
		return nil, err
	}
	return s.repo.GetGlobalPricing(ctx)
}

func (s *service) ListZoneRules(ctx context.Context) ([]models.ZonePricingRule, error) {
	return s.repo.ListZoneRules(ctx)
}

func (s *service) UpsertZoneRule(ctx context.Context, input ZoneRuleInput) (*models.ZonePricingRule, error) {
	if !input.Scope.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid zone scope %q", input.Scope))
	}
	if input.RegionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region id required")
	}
	if input.PackageType != nil && !input.PackageType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid package type %q", *input.PackageType))
	}

	rule := &models.ZonePricingRule{
		Scope:       input.Scope,
		RegionID:    input.RegionID,
		PackageType: input.PackageType,
		FeeUSD:      input.Fee.USD,
		FeeLBP:      input.Fee.LBP,
		Active:      input.Active,
	}

	if input.ID == nil {
		if err := s.repo.CreateZoneRule(ctx, rule); err != nil {
			return nil, err
		}
		return rule, nil
	}

	rule.ID = *input.ID
	if err := s.repo.UpdateZoneRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *service) DeleteZoneRule(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "zone rule id required")
	}
	return s.repo.DeleteZoneRule(ctx, id)
}

func (s *service) ListPackageTypePricing(ctx context.Context) ([]models.PackageTypePricing, error) {
	return s.repo.ListPackageTypePricing(ctx)
}

func (s *service) UpsertPackageTypePricing(ctx context.Context, input PackageTypePricingInput) (*models.PackageTypePricing, error) {
	if !input.PackageType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid package type %q", input.PackageType))
	}
	row := &models.PackageTypePricing{
		PackageType: input.PackageType,
		ExtraUSD:    input.Fee.USD,
		ExtraLBP:    input.Fee.LBP,
		Active:      input.Active,
	}
	if err := s.repo.UpsertPackageTypePricing(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *service) GetClientConfiguration(ctx context.Context, clientID uuid.UUID) (*ClientConfiguration, error) {
	if err := s.requireClient(ctx, clientID); err != nil {
		return nil, err
	}

	cfg := &ClientConfiguration{}

	def, err := s.repo.FindClientDefault(ctx, clientID)
	switch {
	case err == nil:
		cfg.Default = def
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if cfg.ZoneRules, err = s.repo.ListClientZoneRules(ctx, clientID); err != nil {
		return nil, err
	}
	if cfg.PackageExtras, err = s.repo.ListClientPackageExtras(ctx, clientID); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *service) UpsertClientDefault(ctx context.Context, input ClientDefaultInput) (*models.ClientPricingDefault, error) {
	if err := s.requireClient(ctx, input.ClientID); err != nil {
		return nil, err
	}
	row := &models.ClientPricingDefault{
		ClientID: input.ClientID,
		FeeUSD:   input.Fee.USD,
		FeeLBP:   input.Fee.LBP,
	}
	if err := s.repo.UpsertClientDefault(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *service) UpsertClientZoneRule(ctx context.Context, input ClientZoneRuleInput) (*models.ClientZoneRule, error) {
	if err := s.requireClient(ctx, input.ClientID); err != nil {
		return nil, err
	}
	// An empty set would be a rule that can never match anything.
	if len(input.Governorates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone rule must name at least one governorate")
	}

	rule := &models.ClientZoneRule{
		ClientID:     input.ClientID,
		Name:         input.Name,
		Governorates: dbtypes.UUIDArray(input.Governorates),
		FeeUSD:       input.Fee.USD,
		FeeLBP:       input.Fee.LBP,
	}

	if input.ID == nil {
		if err := s.repo.CreateClientZoneRule(ctx, rule); err != nil {
			return nil, err
		}
		return rule, nil
	}

	existing, err := s.repo.FindClientZoneRule(ctx, *input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "zone rule not found")
		}
		return nil, err
	}
	if existing.ClientID != input.ClientID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "zone rule belongs to another client")
	}

	rule.ID = *input.ID
	if err := s.repo.UpdateClientZoneRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *service) DeleteClientZoneRule(ctx context.Context, clientID, ruleID uuid.UUID) error {
	rule, err := s.repo.FindClientZoneRule(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "zone rule not found")
		}
		return err
	}
	if rule.ClientID != clientID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "zone rule belongs to another client")
	}
	return s.repo.DeleteClientZoneRule(ctx, ruleID)
}

func (s *service) UpsertClientPackageExtra(ctx context.Context, input ClientPackageExtraInput) (*models.ClientPackageExtra, error) {
	if !input.PackageType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid package type %q", input.PackageType))
	}
	if err := s.requireClient(ctx, input.ClientID); err != nil {
		return nil, err
	}
	row := &models.ClientPackageExtra{
		ClientID:    input.ClientID,
		PackageType: input.PackageType,
		ExtraUSD:    input.Fee.USD,
		ExtraLBP:    input.Fee.LBP,
	}
	if err := s.repo.UpsertClientPackageExtra(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteClientConfiguration wipes every client-scoped pricing table in one
// transaction so a client can never be left half-configured.
func (s *service) DeleteClientConfiguration(ctx context.Context, clientID uuid.UUID) error {
	if err := s.requireClient(ctx, clientID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteClientDefault(ctx, clientID); err != nil {
			return err
		}
		if err := repo.DeleteClientZoneRules(ctx, clientID); err != nil {
			return err
		}
		return repo.DeleteClientPackageExtras(ctx, clientID)
	})
}

func (s *service) requireClient(ctx context.Context, clientID uuid.UUID) error {
	if clientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return err
	}
	return nil
}
