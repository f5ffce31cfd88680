package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
)

// Repository is the pure store behind the resolver and the rule editor. No
// precedence logic lives here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetGlobalPricing(ctx context.Context) (*models.GlobalPricing, error)
	UpdateGlobalPricing(ctx context.Context, row *models.GlobalPricing) error

	ListActiveZoneRules(ctx context.Context, governorateID, cityID *uuid.UUID) ([]models.ZonePricingRule, error)
	ListZoneRules(ctx context.Context) ([]models.ZonePricingRule, error)
	CreateZoneRule(ctx context.Context, rule *models.ZonePricingRule) error
	UpdateZoneRule(ctx context.Context, rule *models.ZonePricingRule) error
	DeleteZoneRule(ctx context.Context, id uuid.UUID) error

	FindActivePackageTypePricing(ctx context.Context, pkg enums.PackageType) (*models.PackageTypePricing, error)
	ListPackageTypePricing(ctx context.Context) ([]models.PackageTypePricing, error)
	UpsertPackageTypePricing(ctx context.Context, row *models.PackageTypePricing) error

	FindClientDefault(ctx context.Context, clientID uuid.UUID) (*models.ClientPricingDefault, error)
	UpsertClientDefault(ctx context.Context, row *models.ClientPricingDefault) error
	DeleteClientDefault(ctx context.Context, clientID uuid.UUID) error

	ListClientZoneRules(ctx context.Context, clientID uuid.UUID) ([]models.ClientZoneRule, error)
	FindClientZoneRule(ctx context.Context, id uuid.UUID) (*models.ClientZoneRule, error)
	CreateClientZoneRule(ctx context.Context, rule *models.ClientZoneRule) error
	UpdateClientZoneRule(ctx context.Context, rule *models.ClientZoneRule) error
	DeleteClientZoneRule(ctx context.Context, id uuid.UUID) error
	DeleteClientZoneRules(ctx context.Context, clientID uuid.UUID) error

	FindClientPackageExtra(ctx context.Context, clientID uuid.UUID, pkg enums.PackageType) (*models.ClientPackageExtra, error)
	ListClientPackageExtras(ctx context.Context, clientID uuid.UUID) ([]models.ClientPackageExtra, error)
	UpsertClientPackageExtra(ctx context.Context, row *models.ClientPackageExtra) error
	DeleteClientPackageExtras(ctx context.Context, clientID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetGlobalPricing(ctx context.Context) (*models.GlobalPricing, error) {
	var row models.GlobalPricing
	err := r.db.WithContext(ctx).
		Where("id = ?", 1).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) UpdateGlobalPricing(ctx context.Context, row *models.GlobalPricing) error {
	row.ID = 1
	return r.db.WithContext(ctx).
		Model(&models.GlobalPricing{}).
		Where("id = ?", 1).
		Updates(map[string]any{
			"default_fee_usd": row.DefaultFeeUSD,
			"default_fee_lbp": row.DefaultFeeLBP,
		}).Error
}

func (r *repository) ListActiveZoneRules(ctx context.Context, governorateID, cityID *uuid.UUID) ([]models.ZonePricingRule, error) {
	q := r.db.WithContext(ctx).Where("active = ?", true)

	switch {
	case governorateID != nil && cityID != nil:
		q = q.Where(
			"(scope = ? AND region_id = ?) OR (scope = ? AND region_id = ?)",
			enums.ZoneScopeGovernorate, *governorateID, enums.ZoneScopeCity, *cityID,
		)
	case governorateID != nil:
		q = q.Where("scope = ? AND region_id = ?", enums.ZoneScopeGovernorate, *governorateID)
	case cityID != nil:
		q = q.Where("scope = ? AND region_id = ?", enums.ZoneScopeCity, *cityID)
	default:
		return nil, nil
	}

	var rules []models.ZonePricingRule
	if err := q.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) ListZoneRules(ctx context.Context) ([]models.ZonePricingRule, error) {
	var rules []models.ZonePricingRule
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) CreateZoneRule(ctx context.Context, rule *models.ZonePricingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) UpdateZoneRule(ctx context.Context, rule *models.ZonePricingRule) error {
	return r.db.WithContext(ctx).
		Model(&models.ZonePricingRule{}).
		Where("id = ?", rule.ID).
		Updates(map[string]any{
			"scope":        rule.Scope,
			"region_id":    rule.RegionID,
			"package_type": rule.PackageType,
			"fee_usd":      rule.FeeUSD,
			"fee_lbp":      rule.FeeLBP,
			"active":       rule.Active,
		}).Error
}

func (r *repository) DeleteZoneRule(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ZonePricingRule{}).Error
}

func (r *repository) FindActivePackageTypePricing(ctx context.Context, pkg enums.PackageType) (*models.PackageTypePricing, error) {
	var row models.PackageTypePricing
	err := r.db.WithContext(ctx).
		Where("package_type = ? AND active = ?", pkg, true).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListPackageTypePricing(ctx context.Context) ([]models.PackageTypePricing, error) {
	var rows []models.PackageTypePricing
	err := r.db.WithContext(ctx).
		Order("package_type ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpsertPackageTypePricing(ctx context.Context, row *models.PackageTypePricing) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "package_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"extra_usd", "extra_lbp", "active", "updated_at"}),
		}).
		Create(row).Error
}

func (r *repository) FindClientDefault(ctx context.Context, clientID uuid.UUID) (*models.ClientPricingDefault, error) {
	var row models.ClientPricingDefault
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) UpsertClientDefault(ctx context.Context, row *models.ClientPricingDefault) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fee_usd", "fee_lbp", "updated_at"}),
		}).
		Create(row).Error
}

func (r *repository) DeleteClientDefault(ctx context.Context, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&models.ClientPricingDefault{}).Error
}

func (r *repository) ListClientZoneRules(ctx context.Context, clientID uuid.UUID) ([]models.ClientZoneRule, error) {
	var rules []models.ClientZoneRule
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) FindClientZoneRule(ctx context.Context, id uuid.UUID) (*models.ClientZoneRule, error) {
	var rule models.ClientZoneRule
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) CreateClientZoneRule(ctx context.Context, rule *models.ClientZoneRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) UpdateClientZoneRule(ctx context.Context, rule *models.ClientZoneRule) error {
	return r.db.WithContext(ctx).
		Model(&models.ClientZoneRule{}).
		Where("id = ? AND client_id = ?", rule.ID, rule.ClientID).
		Updates(map[string]any{
			"name":         rule.Name,
			"governorates": rule.Governorates,
			"fee_usd":      rule.FeeUSD,
			"fee_lbp":      rule.FeeLBP,
		}).Error
}

func (r *repository) DeleteClientZoneRule(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ClientZoneRule{}).Error
}

func (r *repository) DeleteClientZoneRules(ctx context.Context, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&models.ClientZoneRule{}).Error
}

func (r *repository) FindClientPackageExtra(ctx context.Context, clientID uuid.UUID, pkg enums.PackageType) (*models.ClientPackageExtra, error) {
	var row models.ClientPackageExtra
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND package_type = ?", clientID, pkg).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListClientPackageExtras(ctx context.Context, clientID uuid.UUID) ([]models.ClientPackageExtra, error) {
	var rows []models.ClientPackageExtra
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("package_type ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpsertClientPackageExtra(ctx context.Context, row *models.ClientPackageExtra) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}, {Name: "package_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"extra_usd", "extra_lbp", "updated_at"}),
		}).
		Create(row).Error
}

func (r *repository) DeleteClientPackageExtras(ctx context.Context, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&models.ClientPackageExtra{}).Error
}
