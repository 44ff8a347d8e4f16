package explainer

import (
	"math"
	"sort"

	"spamlens/internal/domain"
)

const DefaultNumFeatures = 5

// Normalize converts attributions into percentages of the total absolute
// weight and keeps the k strongest. Zero-weight attributions carry no
// information and are dropped; the sign of each weight is not reported.
func Normalize(attrs []domain.Attribution, k int) domain.Explanation {
	total := 0.0
	for _, a := range attrs {
		total += math.Abs(a.Weight)
	}
	if total == 0 {
		total = 1
	}

	ranked := make([]domain.Attribution, 0, len(attrs))
	for _, a := range attrs {
		if a.Weight != 0 {
			ranked = append(ranked, a)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		wi, wj := math.Abs(ranked[i].Weight), math.Abs(ranked[j].Weight)
		if wi != wj {
			return wi > wj
		}
		return ranked[i].Index < ranked[j].Index
	})
	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}

	// work in tenths of a percent so the rounded shares can be capped at 100
	tenths := make([]int, len(ranked))
	sum := 0
	for i, a := range ranked {
		tenths[i] = int(math.Round(math.Abs(a.Weight) / total * 1000))
		sum += tenths[i]
	}
	// each share rounds up by at most half a tenth, so one pass from the
	// weakest end absorbs the excess and keeps the order
	for i := len(tenths) - 1; i >= 0 && sum > 1000; i-- {
		if tenths[i] > 0 {
			tenths[i]--
			sum--
		}
	}

	exp := domain.Explanation{Contributions: make([]domain.Contribution, len(ranked))}
	for i, a := range ranked {
		exp.Contributions[i] = domain.Contribution{
			Word:       a.Word,
			Percentage: float64(tenths[i]) / 10,
		}
	}
	return exp
}
