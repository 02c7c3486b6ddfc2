package services

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultTier1DiscountPct = 5.0
	DefaultTier2DiscountPct = 10.0

	defaultTier1Range = "5-9"
	defaultTier2Range = "10+"
)

var (
	ErrInvalidPrice = errors.New("invalid price")

	currencyPrefix = regexp.MustCompile(`^(?i)(\p{Sc}|rs\.?|inr|usd|eur|gbp|aed)+`)
	currencySuffix = regexp.MustCompile(`(?i)(\p{Sc}|/-|inr|usd|eur|gbp|aed)+$`)
	priceNoise     = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\t", "")
)

// PriceTier is an absolute per-unit price offered at a quantity range.
type PriceTier struct {
	Quantity  string
	UnitPrice float64
}

// Discounts are the percentages stored on a product for the two quantity tiers.
type Discounts struct {
	Tier1Pct float64 `json:"pct_5_to_9"`
	Tier2Pct float64 `json:"pct_10_plus"`
}

// DeriveDiscounts turns tier unit prices into percentage discounts off
// basePrice. basePrice must be a valid non-zero price. A unit price above the
// base price yields a negative percentage, which is returned as is. Values are
// not rounded.
func DeriveDiscounts(basePrice float64, tier1, tier2 *PriceTier) Discounts {
	d := Discounts{Tier1Pct: DefaultTier1DiscountPct, Tier2Pct: DefaultTier2DiscountPct}
	if tier1 != nil && strings.ContainsAny(tier1.Quantity, "59") {
		d.Tier1Pct = discountPct(basePrice, tier1.UnitPrice)
	}
	if tier2 != nil && (strings.Contains(tier2.Quantity, "10") || strings.Contains(tier2.Quantity, "+")) {
		d.Tier2Pct = discountPct(basePrice, tier2.UnitPrice)
	}
	return d
}

func discountPct(base, unit float64) float64 {
	return (base - unit) / base * 100
}

// ParsePrice reads a price cell such as "$1,299.00", "Rs. 450" or "899/-".
func ParsePrice(text string) (float64, error) {
	s := priceNoise.Replace(strings.TrimSpace(text))
	s = currencyPrefix.ReplaceAllString(s, "")
	s = currencySuffix.ReplaceAllString(s, "")
	if s == "" {
		return 0, ErrInvalidPrice
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, text)
	}
	return v, nil
}

// tierFromRow builds a tier from raw cells. A tier exists only when its unit
// price parses; a missing quantity falls back to the column's range label.
func tierFromRow(quantity, unitPrice, defaultRange string) *PriceTier {
	if strings.TrimSpace(unitPrice) == "" {
		return nil
	}
	v, err := ParsePrice(unitPrice)
	if err != nil {
		return nil
	}
	q := strings.TrimSpace(quantity)
	if q == "" {
		q = defaultRange
	}
	return &PriceTier{Quantity: q, UnitPrice: v}
}

// PriceFormatter renders prices with a currency symbol and locale grouping.
type PriceFormatter struct {
	symbol  string
	printer *message.Printer
}

func NewPriceFormatter(symbol, locale string) *PriceFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &PriceFormatter{symbol: symbol, printer: message.NewPrinter(tag)}
}

func (f *PriceFormatter) Format(price float64) string {
	return f.symbol + f.printer.Sprintf("%.2f", price)
}
