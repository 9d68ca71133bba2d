package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingCosts are domestic (Japan-side) shipping fees keyed by the
// origin product's size bucket, as produced by OriginProduct.SizeKey.
type ShippingCosts struct {
	Regular decimal.Decimal `json:"regular"`
	Size60  decimal.Decimal `json:"size60"`
	Size80  decimal.Decimal `json:"size80"`
	Size100 decimal.Decimal `json:"size100"`
}

// Lookup returns the domestic shipping cost for a size key, defaulting to
// Regular for any unrecognized key (mirrors OriginProduct.SizeKey's own default).
func (s ShippingCosts) Lookup(sizeKey string) decimal.Decimal {
	switch sizeKey {
	case "size60":
		return s.Size60
	case "size80":
		return s.Size80
	case "size100":
		return s.Size100
	default:
		return s.Regular
	}
}

// PricingSettings holds the single active app-wide pricing configuration
// (table app_settings) consumed by the materializer's per-SKU price
// formula (§4.3 step 6):
//
//	cost = wholesale_price*exchange_rate*(1+margin) + weight*international_shipping_per_kg*exchange_rate + domestic_shipping
//	denom = 1 - commission
//	actual = cost / denom
//	price_jpy = round_to_nearest_10(actual)
type PricingSettings struct {
	ID int64 `json:"id" db:"id"`

	ExchangeRate             decimal.Decimal `json:"exchange_rate" db:"exchange_rate"`
	MarginPercent            decimal.Decimal `json:"margin_percent" db:"margin_percent"`
	CommissionPercent        decimal.Decimal `json:"commission_percent" db:"commission_percent"`
	InternationalShippingPerKg decimal.Decimal `json:"international_shipping_per_kg" db:"international_shipping_per_kg"`
	DomesticShipping         JSONDoc[ShippingCosts] `json:"domestic_shipping" db:"domestic_shipping"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p *PricingSettings) Validate() error {
	if p.ExchangeRate.IsZero() || p.ExchangeRate.IsNegative() {
		return fmt.Errorf("exchange_rate must be positive")
	}
	if p.CommissionPercent.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("commission_percent must be less than 1")
	}
	return nil
}

// CalculatePriceJPY runs the per-SKU price formula (§4.3 step 6, §8
// scenario A) and rounds the result to the nearest 10 yen.
func (p *PricingSettings) CalculatePriceJPY(wholesalePriceCNY, weightKg decimal.Decimal, sizeKey string) int64 {
	margin := decimal.NewFromInt(1).Add(p.MarginPercent)
	base := wholesalePriceCNY.Mul(p.ExchangeRate).Mul(margin)
	intlShipping := weightKg.Mul(p.InternationalShippingPerKg).Mul(p.ExchangeRate)
	domestic := p.DomesticShipping.Value.Lookup(sizeKey)

	cost := base.Add(intlShipping).Add(domestic)
	denom := decimal.NewFromInt(1).Sub(p.CommissionPercent)
	actual := cost.Div(denom)

	return roundToNearestTen(actual)
}

func roundToNearestTen(d decimal.Decimal) int64 {
	ten := decimal.NewFromInt(10)
	return d.Div(ten).Round(0).Mul(ten).IntPart()
}
