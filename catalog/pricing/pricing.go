// Package pricing parses the vendor's compact tiered-price strings.
//
// A raw price field is a comma-separated list of tiers, each of the form
// "qty-qty:price", "qty-:price", or a bare price with no quantity range.
// Rows with garbage in the price column must still ingest, so unusable
// prices collapse to a sentinel that sorts last instead of raising.
package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Sentinel values substituted when a tier is malformed or absent. The price
// sentinel keeps unusable parts at the bottom of price-ascending listings
// rather than masking them as the cheapest.
const (
	SentinelPrice  = 99999999
	SentinelMinQty = 99999999
)

var sentinelPrice = decimal.NewFromInt(SentinelPrice)

// Tier is one parsed quantity break.
type Tier struct {
	MinQuantity int
	UnitPrice   decimal.Decimal
}

// Summary is the pair of derived columns stored per part. WorstUnitPrice is
// the per-unit price alone; it is never multiplied by MinOrderQty.
type Summary struct {
	// WorstUnitPrice is the highest unit price across all tiers, i.e. the
	// least favorable economy of scale, used as a single conservative
	// comparator.
	WorstUnitPrice float64

	// MinOrderQty is the smallest tier minimum seen, clamped to 1 when any
	// tier starts at or below 1, or SentinelMinQty when no tier yields one.
	MinOrderQty int
}

// Parse decodes a raw tiered-price string. Per-tier parse failures are
// absorbed: a tier with an unreadable price contributes the sentinel price
// and no quantity minimum. Parse never fails.
func Parse(raw string) ([]Tier, Summary) {
	var tiers []Tier

	worst := decimal.Zero
	minQty := SentinelMinQty

	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)

		qtyPart, pricePart, ranged := strings.Cut(field, ":")
		if !ranged {
			// Bare price, no quantity break: a single tier from quantity 1.
			pricePart = field
			qtyPart = "1"
		}

		price, err := decimal.NewFromString(strings.TrimSpace(pricePart))
		if err != nil {
			// Sometimes the price is nonsense or omitted.
			if sentinelPrice.GreaterThan(worst) {
				worst = sentinelPrice
			}
			continue
		}

		qty := tierMinimum(qtyPart)
		tiers = append(tiers, Tier{MinQuantity: qty, UnitPrice: price})

		if price.GreaterThan(worst) {
			worst = price
		}
		if qty < minQty {
			minQty = qty
		}
	}

	if minQty <= 1 {
		minQty = 1
	}

	return tiers, Summary{
		WorstUnitPrice: worst.InexactFloat64(),
		MinOrderQty:    minQty,
	}
}

// tierMinimum extracts the lower bound of a "qty-qty" or "qty-" range.
// Unreadable bounds report the sentinel so they never win the minimum.
func tierMinimum(qtyPart string) int {
	low, _, _ := strings.Cut(strings.TrimSpace(qtyPart), "-")
	qty, err := strconv.Atoi(strings.TrimSpace(low))
	if err != nil {
		return SentinelMinQty
	}
	return qty
}
