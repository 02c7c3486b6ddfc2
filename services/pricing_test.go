package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	valid := map[string]float64{
		"450":          450,
		" $1,299.00 ":  1299,
		"Rs. 450":      450,
		"INR 1 200.50": 1200.5,
		"899/-":        899,
		"₹2,499":       2499,
		"12.5€":        12.5,
		"-10":          -10,
	}
	for in, want := range valid {
		got, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 0.0001, in)
	}

	for _, in := range []string{"", "  ", "abc", "12.3.4", "$", "NaN"} {
		_, err := ParsePrice(in)
		assert.True(t, errors.Is(err, ErrInvalidPrice), "ParsePrice(%q) = %v", in, err)
	}
}

func TestDeriveDiscounts(t *testing.T) {
	tests := []struct {
		name  string
		base  float64
		tier1 *PriceTier
		tier2 *PriceTier
		want  Discounts
	}{
		{"defaults", 100, nil, nil, Discounts{5, 10}},
		{"both tiers", 200, &PriceTier{"5-9", 150}, &PriceTier{"10+", 120}, Discounts{25, 40}},
		{"unrounded", 300, &PriceTier{"5-9", 200}, nil, Discounts{100.0 / 3, 10}},
		{"unit above base", 100, &PriceTier{"5-9", 110}, nil, Discounts{-10, 10}},
		{"unrecognized tier1 range", 100, &PriceTier{"1-4", 50}, nil, Discounts{5, 10}},
		{"tier2 plus only", 100, nil, &PriceTier{"12+", 80}, Discounts{5, 20}},
		{"tier2 unrecognized", 100, nil, &PriceTier{"20-30", 80}, Discounts{5, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveDiscounts(tt.base, tt.tier1, tt.tier2)
			assert.InDelta(t, tt.want.Tier1Pct, got.Tier1Pct, 1e-9)
			assert.InDelta(t, tt.want.Tier2Pct, got.Tier2Pct, 1e-9)
		})
	}
}

func TestDeriveDiscountsKeepsFullPrecision(t *testing.T) {
	d := DeriveDiscounts(3, &PriceTier{"5-9", 2}, &PriceTier{"10+", 1})
	assert.Equal(t, (3.0-2.0)/3.0*100, d.Tier1Pct)
	assert.NotEqual(t, 33.33, d.Tier1Pct)
	assert.Equal(t, (3.0-1.0)/3.0*100, d.Tier2Pct)
}

func TestTierFromRow(t *testing.T) {
	tier := tierFromRow("", "95", defaultTier1Range)
	require.NotNil(t, tier)
	assert.Equal(t, PriceTier{Quantity: "5-9", UnitPrice: 95}, *tier)

	tier = tierFromRow(" 10 or more ", "$90", defaultTier2Range)
	require.NotNil(t, tier)
	assert.Equal(t, "10 or more", tier.Quantity)

	assert.Nil(t, tierFromRow("5-9", "", defaultTier1Range))
	assert.Nil(t, tierFromRow("5-9", "cheap", defaultTier1Range))
}

func TestPriceFormatter(t *testing.T) {
	assert.Equal(t, "₹450.00", NewPriceFormatter("₹", "en-IN").Format(450))
	assert.Equal(t, "$1,299.50", NewPriceFormatter("$", "en-US").Format(1299.5))
	assert.Equal(t, "12.00", NewPriceFormatter("", "not a locale!").Format(12))
}
