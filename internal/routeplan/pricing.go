package routeplan

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultMinSegmentPrice applies when no pricing floor is configured.
var DefaultMinSegmentPrice = decimal.RequireFromString("2.00")

// SegmentPrice splits the full route price proportionally by distance ratio,
// floors the result at minPrice and rounds to 2 decimal places.
func SegmentPrice(fullRoutePrice, distanceRatio, minPrice decimal.Decimal) (decimal.Decimal, error) {
	if fullRoutePrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("full route price must not be negative")
	}
	if distanceRatio.IsNegative() || distanceRatio.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("distance ratio must be within [0, 1]")
	}
	if minPrice.IsNegative() {
		minPrice = DefaultMinSegmentPrice
	}

	price := fullRoutePrice.Mul(distanceRatio)
	if price.LessThan(minPrice) {
		price = minPrice
	}
	return price.Round(2), nil
}

// ParseMinPrice converts the configured floor to a decimal, falling back to
// the default on empty or malformed input.
func ParseMinPrice(raw string) decimal.Decimal {
	if raw == "" {
		return DefaultMinSegmentPrice
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil || parsed.IsNegative() {
		return DefaultMinSegmentPrice
	}
	return parsed
}
