package domain

import "fmt"

// AssetClass classifies an instrument. The set is closed: each class carries
// its own price-provider binding, so adding a class means adding a binding.
type AssetClass string

const (
	AssetClassCrypto     AssetClass = "crypto"
	AssetClassEquity     AssetClass = "equity"
	AssetClassETF        AssetClass = "etf"
	AssetClassBond       AssetClass = "bond"
	AssetClassRealEstate AssetClass = "real_estate"
	AssetClassOther      AssetClass = "other"
)

// AssetClasses lists every valid asset class in a stable order.
var AssetClasses = []AssetClass{
	AssetClassCrypto,
	AssetClassEquity,
	AssetClassETF,
	AssetClassBond,
	AssetClassRealEstate,
	AssetClassOther,
}

// ParseAssetClass validates a raw asset class string.
func ParseAssetClass(raw string) (AssetClass, error) {
	for _, c := range AssetClasses {
		if raw == string(c) {
			return c, nil
		}
	}
	return "", NewValidationError("asset_class", fmt.Sprintf("unknown asset class %q", raw))
}
