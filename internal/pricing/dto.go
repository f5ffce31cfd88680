package pricing

import (
	"github.com/google/uuid"

	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

// ResolveInput identifies one shipment to be quoted. Governorate and city are
// optional; without them only the client-default and global tiers are
// reachable.
type ResolveInput struct {
	ClientID      uuid.UUID
	GovernorateID *uuid.UUID
	CityID        *uuid.UUID
	PackageType   enums.PackageType
}

// Resolution is the single effective fee and the tier that produced it.
type Resolution struct {
	Fee  types.Money       `json:"fee"`
	Tier enums.PricingTier `json:"tier"`
}

// ClientDefaultInput sets or replaces a client's default fee.
type ClientDefaultInput struct {
	ClientID uuid.UUID
	Fee      types.Money
}

// ClientZoneRuleInput creates or updates a client zone rule. A nil ID creates
// a new rule.
type ClientZoneRuleInput struct {
	ID           *uuid.UUID
	ClientID     uuid.UUID
	Name         *string
	Governorates []uuid.UUID
	Fee          types.Money
}

// ClientPackageExtraInput sets the additive extra for one client/package pair.
type ClientPackageExtraInput struct {
	ClientID    uuid.UUID
	PackageType enums.PackageType
	Fee         types.Money
}

// GlobalPricingInput replaces the singleton fallback fee.
type GlobalPricingInput struct {
	Fee types.Money
}

// ZoneRuleInput creates or updates a system-wide zone override.
type ZoneRuleInput struct {
	ID          *uuid.UUID
	Scope       enums.ZoneScope
	RegionID    uuid.UUID
	PackageType *enums.PackageType
	Fee         types.Money
	Active      bool
}

// PackageTypePricingInput sets the system-wide extra for one package type.
type PackageTypePricingInput struct {
	PackageType enums.PackageType
	Fee         types.Money
	Active      bool
}

// ClientConfiguration is the full pricing view for one client, returned to
// the admin rule editor.
type ClientConfiguration struct {
	Default       *models.ClientPricingDefault `json:"default,omitempty"`
	ZoneRules     []models.ClientZoneRule      `json:"zone_rules"`
	PackageExtras []models.ClientPackageExtra  `json:"package_extras"`
}
