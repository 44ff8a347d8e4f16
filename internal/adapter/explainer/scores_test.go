package explainer

import (
	"math"
	"testing"

	"spamlens/internal/domain"
)

func TestNormalize_PercentagesAndOrder(t *testing.T) {
	attrs := []domain.Attribution{
		{Word: "win", Weight: 0.1, Index: 0},
		{Word: "free", Weight: 0.5, Index: 1},
		{Word: "cash", Weight: -0.3, Index: 2},
		{Word: "now", Weight: 0.1, Index: 3},
	}

	exp := Normalize(attrs, 5)
	want := []domain.Contribution{
		{Word: "free", Percentage: 50},
		{Word: "cash", Percentage: 30},
		{Word: "win", Percentage: 10},
		{Word: "now", Percentage: 10},
	}
	if len(exp.Contributions) != len(want) {
		t.Fatalf("expected %d contributions, got %v", len(want), exp.Contributions)
	}
	for i := range want {
		if exp.Contributions[i] != want[i] {
			t.Errorf("contribution %d: expected %+v, got %+v", i, want[i], exp.Contributions[i])
		}
	}
}

func TestNormalize_TruncatesAfterTotal(t *testing.T) {
	attrs := []domain.Attribution{
		{Word: "a", Weight: 0.4, Index: 0},
		{Word: "b", Weight: 0.3, Index: 1},
		{Word: "c", Weight: 0.2, Index: 2},
		{Word: "d", Weight: 0.1, Index: 3},
	}

	exp := Normalize(attrs, 2)
	if len(exp.Contributions) != 2 {
		t.Fatalf("expected 2 contributions, got %d", len(exp.Contributions))
	}
	sum := exp.Contributions[0].Percentage + exp.Contributions[1].Percentage
	if sum != 70 {
		t.Errorf("expected truncated subset to sum to 70, got %f", sum)
	}
}

func TestNormalize_Rounding(t *testing.T) {
	attrs := []domain.Attribution{
		{Word: "a", Weight: 1, Index: 0},
		{Word: "b", Weight: 1, Index: 1},
		{Word: "c", Weight: 1, Index: 2},
	}

	exp := Normalize(attrs, 5)
	for _, c := range exp.Contributions {
		if c.Percentage != 33.3 {
			t.Errorf("expected 33.3, got %v", c.Percentage)
		}
	}
	if exp.Contributions[0].Word != "a" || exp.Contributions[2].Word != "c" {
		t.Errorf("expected ties in token order, got %v", exp.Words())
	}
}

func TestNormalize_ZeroWeights(t *testing.T) {
	attrs := []domain.Attribution{{Word: "ok", Weight: 0, Index: 0}}

	exp := Normalize(attrs, 5)
	if len(exp.Contributions) != 0 {
		t.Errorf("expected empty explanation for all-zero weights, got %v", exp.Contributions)
	}

	if exp := Normalize(nil, 5); len(exp.Contributions) != 0 {
		t.Errorf("expected empty explanation for no attributions, got %v", exp.Contributions)
	}
}

func TestNormalize_RoundedSharesNeverExceedHundred(t *testing.T) {
	// sixteen equal weights are 6.25% each, which rounds up to 6.3
	attrs := make([]domain.Attribution, 16)
	for i := range attrs {
		attrs[i] = domain.Attribution{Word: string(rune('a' + i)), Weight: 1, Index: i}
	}

	exp := Normalize(attrs, 16)
	if len(exp.Contributions) != 16 {
		t.Fatalf("expected 16 contributions, got %d", len(exp.Contributions))
	}
	tenths := 0
	for i, c := range exp.Contributions {
		tenths += int(math.Round(c.Percentage * 10))
		if i > 0 && c.Percentage > exp.Contributions[i-1].Percentage {
			t.Errorf("contribution %d (%v) ranks above %d (%v)", i, c.Percentage, i-1, exp.Contributions[i-1].Percentage)
		}
	}
	if tenths != 1000 {
		t.Errorf("expected shares to total 100.0, got %.1f", float64(tenths)/10)
	}
	if exp.Contributions[0].Percentage != 6.3 || exp.Contributions[15].Percentage != 6.2 {
		t.Errorf("expected 6.3 at the top and 6.2 at the bottom, got %v and %v",
			exp.Contributions[0].Percentage, exp.Contributions[15].Percentage)
	}
}
