package enums

import "fmt"

// ZoneScope says whether a zone pricing rule targets a governorate or a city.
type ZoneScope string

const (
	ZoneScopeGovernorate ZoneScope = "governorate"
	ZoneScopeCity        ZoneScope = "city"
)

var validZoneScopes = []ZoneScope{
	ZoneScopeGovernorate,
	ZoneScopeCity,
}

// String implements fmt.Stringer.
func (z ZoneScope) String() string {
	return string(z)
}

// IsValid reports whether the value is a known ZoneScope.
func (z ZoneScope) IsValid() bool {
	for _, candidate := range validZoneScopes {
		if candidate == z {
			return true
		}
	}
	return false
}

// ParseZoneScope converts raw input into a ZoneScope.
func ParseZoneScope(value string) (ZoneScope, error) {
	for _, candidate := range validZoneScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid zone scope %q", value)
}
