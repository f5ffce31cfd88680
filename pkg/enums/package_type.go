package enums

import "fmt"

// PackageType classifies the shipment handed to a courier.
type PackageType string

const (
	PackageTypeParcel   PackageType = "parcel"
	PackageTypeDocument PackageType = "document"
	PackageTypeBulky    PackageType = "bulky"
)

var validPackageTypes = []PackageType{
	PackageTypeParcel,
	PackageTypeDocument,
	PackageTypeBulky,
}

// String implements fmt.Stringer.
func (p PackageType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PackageType.
func (p PackageType) IsValid() bool {
	for _, candidate := range validPackageTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePackageType converts raw input into a PackageType.
func ParsePackageType(value string) (PackageType, error) {
	for _, candidate := range validPackageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid package type %q", value)
}
