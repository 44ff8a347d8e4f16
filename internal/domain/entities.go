package domain

import "time"

// Token is a whitespace-delimited unit of a message. Start and End are byte
// offsets into the original message.
type Token struct {
	Text  string
	Index int
	Start int
	End   int
}

// PerturbedSample is one masked variant of a message. Mask[i] is true when
// token i was kept.
type PerturbedSample struct {
	Mask []bool
	Text string
}

// Kept returns the number of tokens left unmasked.
func (s PerturbedSample) Kept() int {
	n := 0
	for _, keep := range s.Mask {
		if keep {
			n++
		}
	}
	return n
}

// FeatureVector is a sparse vectorizer output. Indices are ascending.
type FeatureVector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// Dot returns the inner product of the vector with a dense weight row.
func (v FeatureVector) Dot(weights []float64) float64 {
	sum := 0.0
	for i, idx := range v.Indices {
		if idx < len(weights) {
			sum += v.Values[i] * weights[idx]
		}
	}
	return sum
}

// SurrogateModel is the local linear approximation fitted for one message.
type SurrogateModel struct {
	Coefficients    []float64
	Intercept       float64
	Score           float64
	LocalPrediction float64
}

type Attribution struct {
	Word   string
	Weight float64
	Index  int
}

type Contribution struct {
	Word       string  `json:"word"`
	Percentage float64 `json:"percentage"`
}

// Explanation lists the words that most influenced a prediction, strongest
// first.
type Explanation struct {
	Contributions []Contribution `json:"contributions"`
}

// Words returns the explained words in rank order.
func (e Explanation) Words() []string {
	words := make([]string, len(e.Contributions))
	for i, c := range e.Contributions {
		words[i] = c.Word
	}
	return words
}

// ExplainRequest describes one explanation call. A nil Seed draws a fresh
// random seed, which makes the result non-reproducible.
type ExplainRequest struct {
	Document    string
	TargetClass int
	NumFeatures int
	NumSamples  int
	Seed        *uint64
}

type Prediction struct {
	Label         string    `json:"label"`
	ClassIndex    int       `json:"class_index"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"probabilities"`
}

// Analysis is the combined verdict and explanation for one message.
type Analysis struct {
	Message     string      `json:"message"`
	Prediction  Prediction  `json:"prediction"`
	Explanation Explanation `json:"explanation"`
}

// ModelInfo describes a stored model artifact.
type ModelInfo struct {
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	Kind       string    `json:"kind"`
	Classes    []string  `json:"classes"`
	Features   int       `json:"features"`
	ImportedAt time.Time `json:"imported_at"`
}

// ScanResult is the outcome for a single scanned message.
type ScanResult struct {
	Path        string       `json:"path"`
	Line        int          `json:"line,omitempty"`
	Message     string       `json:"message"`
	Prediction  Prediction   `json:"prediction"`
	Explanation *Explanation `json:"explanation,omitempty"`
}
