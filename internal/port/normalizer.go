package port

// Normalizer cleans raw message text into the form the vectorizer expects.
// Implementations must be deterministic and free of side effects.
type Normalizer interface {
	Normalize(text string) string
}
