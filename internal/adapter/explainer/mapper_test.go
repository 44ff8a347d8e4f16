package explainer

import (
	"testing"
)

func TestSurrogateToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"FREE!", "FREE"},
		{"(call)", "call"},
		{"now,", "now"},
		{"£1000.", "1000"},
		{"!!!", "!!!"},
		{"it's", "it's"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := SurrogateToken(tt.in); got != tt.want {
			t.Errorf("SurrogateToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapAttributions(t *testing.T) {
	doc := "Win FREE! cash now"
	tokens := Tokenize(doc)

	attrs := MapAttributions(doc, tokens, []float64{0.1, 0.6, 0.2, -0.05})
	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributions, got %d", len(attrs))
	}
	want := []string{"Win", "FREE!", "cash", "now"}
	for i, a := range attrs {
		if a.Word != want[i] {
			t.Errorf("attribution %d: expected %q, got %q", i, want[i], a.Word)
		}
		if a.Index != i {
			t.Errorf("attribution %d: index %d", i, a.Index)
		}
	}
	if attrs[3].Weight != -0.05 {
		t.Errorf("expected signed weight to be kept, got %f", attrs[3].Weight)
	}
}

func TestMapAttributions_FirstMatchWins(t *testing.T) {
	doc := "freely FREE! offer"
	tokens := Tokenize(doc)

	attrs := MapAttributions(doc, tokens, []float64{0, 1, 0})
	if attrs[1].Word != "freely" {
		t.Errorf("expected first textual match 'freely', got %q", attrs[1].Word)
	}
}

func TestMapAttributions_FallbackToSurrogate(t *testing.T) {
	// tokens taken from a different text than the displayed document
	tokens := Tokenize("prize")
	attrs := MapAttributions("win cash", tokens, []float64{0.4})

	if attrs[0].Word != "prize" {
		t.Errorf("expected fallback to surrogate token, got %q", attrs[0].Word)
	}
}
