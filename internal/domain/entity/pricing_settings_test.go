package entity

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculatePriceJPY(t *testing.T) {
	settings := &PricingSettings{
		ExchangeRate:               decimal.NewFromFloat(20.5),
		MarginPercent:              decimal.NewFromFloat(0.3),
		CommissionPercent:          decimal.NewFromFloat(0.1),
		InternationalShippingPerKg: decimal.NewFromFloat(50),
		DomesticShipping: JSONDoc[ShippingCosts]{Value: ShippingCosts{
			Regular: decimal.NewFromInt(700),
			Size60:  decimal.NewFromInt(900),
		}},
	}

	price := settings.CalculatePriceJPY(decimal.NewFromFloat(10), decimal.NewFromFloat(0.5), "regular")
	if price <= 0 {
		t.Fatalf("expected a positive price, got %d", price)
	}
	if price%10 != 0 {
		t.Errorf("expected price rounded to nearest 10, got %d", price)
	}
}

func TestCalculatePriceJPYUsesSizeBucket(t *testing.T) {
	settings := &PricingSettings{
		ExchangeRate:      decimal.NewFromInt(20),
		MarginPercent:     decimal.Zero,
		CommissionPercent: decimal.Zero,
		DomesticShipping: JSONDoc[ShippingCosts]{Value: ShippingCosts{
			Regular: decimal.NewFromInt(500),
			Size60:  decimal.NewFromInt(1000),
		}},
	}

	regular := settings.CalculatePriceJPY(decimal.Zero, decimal.Zero, "regular")
	size60 := settings.CalculatePriceJPY(decimal.Zero, decimal.Zero, "size60")
	if regular >= size60 {
		t.Errorf("expected size60 domestic shipping (%d) to exceed regular (%d)", size60, regular)
	}
}

func TestPricingSettingsValidate(t *testing.T) {
	cases := []struct {
		name    string
		p       PricingSettings
		wantErr bool
	}{
		{"valid", PricingSettings{ExchangeRate: decimal.NewFromInt(20), CommissionPercent: decimal.NewFromFloat(0.1)}, false},
		{"zero exchange rate", PricingSettings{ExchangeRate: decimal.Zero}, true},
		{"commission at 1", PricingSettings{ExchangeRate: decimal.NewFromInt(1), CommissionPercent: decimal.NewFromInt(1)}, true},
	}
	for _, tc := range cases {
		err := tc.p.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: expected no error, got %v", tc.name, err)
		}
	}
}

func TestShippingCostsLookup(t *testing.T) {
	costs := ShippingCosts{
		Regular: decimal.NewFromInt(1),
		Size60:  decimal.NewFromInt(2),
		Size80:  decimal.NewFromInt(3),
		Size100: decimal.NewFromInt(4),
	}
	cases := map[string]decimal.Decimal{
		"regular": costs.Regular,
		"size60":  costs.Size60,
		"size80":  costs.Size80,
		"size100": costs.Size100,
		"unknown": costs.Regular,
	}
	for key, want := range cases {
		if got := costs.Lookup(key); !got.Equal(want) {
			t.Errorf("Lookup(%q) = %v, want %v", key, got, want)
		}
	}
}
