package enums

import "fmt"

// PricingTier identifies which precedence level produced a resolved fee.
type PricingTier string

const (
	PricingTierClientZone    PricingTier = "client_zone"
	PricingTierClientPackage PricingTier = "client_package"
	PricingTierClientDefault PricingTier = "client_default"
	PricingTierGlobal        PricingTier = "global"
)

var validPricingTiers = []PricingTier{
	PricingTierClientZone,
	PricingTierClientPackage,
	PricingTierClientDefault,
	PricingTierGlobal,
}

// String implements fmt.Stringer.
func (t PricingTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known PricingTier.
func (t PricingTier) IsValid() bool {
	for _, candidate := range validPricingTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePricingTier converts raw input into a PricingTier.
func ParsePricingTier(value string) (PricingTier, error) {
	for _, candidate := range validPricingTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing tier %q", value)
}
