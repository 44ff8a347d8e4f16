package usecase

import (
	"context"
	"fmt"
	"strings"

	"spamlens/internal/domain"
)

// ClassifyUseCase labels messages with the loaded model.
type ClassifyUseCase struct {
	rt *Runtime
}

func NewClassifyUseCase(rt *Runtime) *ClassifyUseCase {
	return &ClassifyUseCase{rt: rt}
}

// Classify returns the most probable class for msg together with the full
// probability vector.
func (u *ClassifyUseCase) Classify(ctx context.Context, msg string) (domain.Prediction, error) {
	preds, err := u.ClassifyBatch(ctx, []string{msg})
	if err != nil {
		return domain.Prediction{}, err
	}
	return preds[0], nil
}

// ClassifyBatch classifies several messages in one oracle call.
func (u *ClassifyUseCase) ClassifyBatch(ctx context.Context, msgs []string) ([]domain.Prediction, error) {
	for i, m := range msgs {
		if strings.TrimSpace(m) == "" {
			return nil, fmt.Errorf("message %d: %w", i, domain.ErrEmptyInput)
		}
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	probs, err := u.rt.Oracle.ClassProbabilities(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	classes := u.rt.Classes()
	preds := make([]domain.Prediction, len(probs))
	for i, row := range probs {
		best := 0
		for j, p := range row {
			if p > row[best] {
				best = j
			}
		}
		preds[i] = domain.Prediction{
			Label:         classes[best],
			ClassIndex:    best,
			Confidence:    row[best],
			Probabilities: row,
		}
	}
	return preds, nil
}
