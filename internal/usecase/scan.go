package usecase

import (
	"context"
	"fmt"

	"spamlens/internal/adapter/fs"
	"spamlens/internal/domain"
	"spamlens/internal/logger"
	"spamlens/internal/port"
)

// ScanUseCase classifies every message found in a directory tree.
type ScanUseCase struct {
	walker   port.FileWalker
	classify *ClassifyUseCase
	explain  *ExplainUseCase
}

func NewScanUseCase(walker port.FileWalker, classify *ClassifyUseCase, explain *ExplainUseCase) *ScanUseCase {
	return &ScanUseCase{
		walker:   walker,
		classify: classify,
		explain:  explain,
	}
}

type ScanOptions struct {
	PerLine     bool
	Explain     bool
	NumFeatures int
	NumSamples  int
	Seed        *uint64
}

// ScanResult contains the results of a scan.
type ScanResult struct {
	Files    int
	Messages int
	Counts   map[string]int
	Results  []domain.ScanResult
	Errors   []string
}

// ProgressFunc is called after each file with the number of files done.
type ProgressFunc func(done, total int)

// Scan walks root and classifies each message. Errors for single files are
// collected in the result; only walking failures and cancellation abort.
func (u *ScanUseCase) Scan(ctx context.Context, root string, opts ScanOptions, progress ProgressFunc) (*ScanResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	log := logger.FromContext(ctx)
	result := &ScanResult{Counts: make(map[string]int)}

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := u.scanFile(ctx, file.Path, opts, result); err != nil {
			log.Warn("scan failed", "path", file.Path, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Path, err))
		}
		result.Files++
		if progress != nil {
			progress(i+1, len(files))
		}
	}

	log.Info("scan complete", "files", result.Files, "messages", result.Messages, "errors", len(result.Errors))
	return result, nil
}

func (u *ScanUseCase) scanFile(ctx context.Context, path string, opts ScanOptions, result *ScanResult) error {
	msgs, err := fs.ReadMessages(path, opts.PerLine)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	preds, err := u.classify.ClassifyBatch(ctx, texts)
	if err != nil {
		return err
	}

	// results are committed only once every message of the file succeeded
	fileResults := make([]domain.ScanResult, 0, len(msgs))
	for i, m := range msgs {
		r := domain.ScanResult{
			Path:       path,
			Line:       m.Line,
			Message:    m.Text,
			Prediction: preds[i],
		}
		if opts.Explain && u.explain != nil {
			exp, err := u.explain.Explain(ctx, domain.ExplainRequest{
				Document:    m.Text,
				TargetClass: u.explain.DefaultTarget(),
				NumFeatures: opts.NumFeatures,
				NumSamples:  opts.NumSamples,
				Seed:        opts.Seed,
			})
			if err != nil {
				return fmt.Errorf("line %d: %w", m.Line, err)
			}
			r.Explanation = &exp
		}
		fileResults = append(fileResults, r)
	}

	for _, r := range fileResults {
		result.Results = append(result.Results, r)
		result.Counts[r.Prediction.Label]++
		result.Messages++
	}
	return nil
}
