package analyzer

import (
	"testing"
)

func TestTokenizer_Tokenize_Lowercase(t *testing.T) {
	tok := NewTokenizer(false, true)

	tokens := tok.Tokenize("WIN Free Cash now")
	expected := []string{"win", "free", "cash", "now"}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i := range expected {
		if tokens[i] != expected[i] {
			t.Errorf("token %d: expected %q, got %q", i, expected[i], tokens[i])
		}
	}
}

func TestTokenizer_PreserveCase(t *testing.T) {
	tok := NewTokenizer(false, false)

	tokens := tok.Tokenize("Call NOW")
	if len(tokens) != 2 || tokens[0] != "Call" || tokens[1] != "NOW" {
		t.Errorf("expected case to be preserved, got %v", tokens)
	}
}

func TestTokenizer_StopwordRemoval(t *testing.T) {
	tok := NewTokenizer(true, true)

	tokens := tok.Tokenize("the prize is yours")
	for _, token := range tokens {
		if token == "the" || token == "is" {
			t.Errorf("stopword %q should be removed, got %v", token, tokens)
		}
	}
	if len(tokens) != 2 {
		t.Errorf("expected 2 tokens, got %v", tokens)
	}
}

func TestTokenizer_ShortWordRemoval(t *testing.T) {
	tok := NewTokenizer(false, true)

	tokens := tok.Tokenize("u r a winner")
	if len(tokens) != 1 || tokens[0] != "winner" {
		t.Errorf("expected only 'winner', got %v", tokens)
	}
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer(true, true)

	if tokens := tok.Tokenize(""); len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"hello_world", 1},
		{"hello-world", 2},
		{"FREE!!! cash", 2},
		{"txt STOP to 80082", 4},
		{"", 0},
	}

	for _, tt := range tests {
		words := splitWords(tt.input)
		if len(words) != tt.expected {
			t.Errorf("splitWords(%q) = %d words, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}
