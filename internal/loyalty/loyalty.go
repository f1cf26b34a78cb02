// Package loyalty holds the points and tier formulas shared by the
// ingestion pipeline, the recalculator and the read API.
package loyalty

import "math"

// PointsDivisor is the rupiah of net sales that earns one loyalty point.
const PointsDivisor = 500_000

const (
	TierSilver  = "Silver"
	TierGold    = "Gold"
	TierDiamond = "Diamond"
)

// Threshold maps a lifetime net sales cutoff to a tier name. The table is
// ordered ascending; a customer holds the highest tier whose cutoff their
// lifetime net sales reaches.
type Threshold struct {
	MinNetSales float64
	Tier        string
}

var thresholds = []Threshold{
	{0, TierSilver},
	{250_000_000, TierGold},
	{750_000_000, TierDiamond},
}

// PointsFor computes the points a transaction earns from its net sales.
func PointsFor(netSales float64) int64 {
	return int64(math.Floor(netSales / PointsDivisor))
}

// TierFor derives the tier for a lifetime net sales total.
func TierFor(lifetimeNetSales float64) string {
	tier := thresholds[0].Tier
	for _, t := range thresholds {
		if lifetimeNetSales >= t.MinNetSales {
			tier = t.Tier
		}
	}
	return tier
}

// NextTier reports the next tier above the given lifetime net sales and the
// additional net sales needed to reach it. Returns ("", 0) at the top tier.
func NextTier(lifetimeNetSales float64) (string, float64) {
	for _, t := range thresholds {
		if lifetimeNetSales < t.MinNetSales {
			return t.Tier, t.MinNetSales - lifetimeNetSales
		}
	}
	return "", 0
}
