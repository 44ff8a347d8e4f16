package port

import (
	"context"

	"spamlens/internal/domain"
)

// Explainer attributes a prediction to the words of a message.
type Explainer interface {
	Explain(ctx context.Context, req domain.ExplainRequest) (domain.Explanation, error)
}
