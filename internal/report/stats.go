package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Stats summarizes the discounted price column and the average saving.
// Aggregates are only meaningful when the matching count is non-zero.
type Stats struct {
	MeanPrice  float64
	MaxPrice   float64
	MinPrice   float64
	PricedRows int

	// MeanDiscountPercent averages (UVP - price) / UVP * 100 over rows
	// that have both prices and a non-zero UVP.
	MeanDiscountPercent float64
	DiscountRows        int
}

func (s Stats) HasPrices() bool { return s.PricedRows > 0 }

func (s Stats) HasDiscount() bool { return s.DiscountRows > 0 }

// Coerce converts price text to a number. Anything that is not a finite
// decimal number, the N/A sentinel included, is reported as missing.
func Coerce(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Compute coerces both price columns and aggregates them. Missing values are
// skipped, they never count as zero.
func Compute(t Table) Stats {
	var (
		s           Stats
		priceSum    float64
		discountSum float64
		maxPrice    = math.Inf(-1)
		minPrice    = math.Inf(1)
	)

	for _, r := range t.Rows {
		price, hasPrice := Coerce(r.DiscountPrice)
		if hasPrice {
			priceSum += price
			s.PricedRows++
			if price > maxPrice {
				maxPrice = price
			}
			if price < minPrice {
				minPrice = price
			}
		}

		original, hasOriginal := Coerce(r.OriginalPrice)
		if hasPrice && hasOriginal && original != 0 {
			discountSum += (original - price) / original * 100
			s.DiscountRows++
		}
	}

	if s.PricedRows > 0 {
		s.MeanPrice = priceSum / float64(s.PricedRows)
		s.MaxPrice = maxPrice
		s.MinPrice = minPrice
	}
	if s.DiscountRows > 0 {
		s.MeanDiscountPercent = discountSum / float64(s.DiscountRows)
	}
	return s
}

// Missing is shown in place of an aggregate that had no input.
const Missing = "—"

// FormatCurrency renders a euro amount with two decimals, "€214.50".
func FormatCurrency(v float64) string {
	return fmt.Sprintf("€%.2f", v)
}

// FormatPercent renders a percentage with one decimal, "20.0%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Tile is one labelled statistic as shown to the user.
type Tile struct {
	Label string
	Value string
}

// Tiles returns the four summary statistics with their display labels.
func (s Stats) Tiles() []Tile {
	price := func(v float64) string {
		if !s.HasPrices() {
			return Missing
		}
		return FormatCurrency(v)
	}
	saving := Missing
	if s.HasDiscount() {
		saving = FormatPercent(s.MeanDiscountPercent)
	}
	return []Tile{
		{Label: "Durchschnittlicher Angebotspreis", Value: price(s.MeanPrice)},
		{Label: "Höchster Preis", Value: price(s.MaxPrice)},
		{Label: "Niedrigster Preis", Value: price(s.MinPrice)},
		{Label: "Durchschnittliche Ersparnis", Value: saving},
	}
}
