package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"spamlens/config"
	"spamlens/internal/adapter/explainer"
	"spamlens/internal/adapter/store"
	"spamlens/internal/domain"
	"spamlens/internal/usecase"
)

func main() {
	dataDir := flag.String("dir", ".", "Directory holding .spamlens and spamlens.yaml")
	modelPath := flag.String("model", "", "Model artifact (default: stored model from config)")
	msg := flag.String("q", "", "Message to explain")
	runs := flag.Int("runs", 10, "Number of explanations with different seeds")
	samples := flag.Int("samples", 0, "Perturbed samples per run (default from config)")
	topK := flag.Int("k", 5, "Number of words compared between runs")
	flag.Parse()

	if *msg == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -model model.json -q \"message\"")
		fmt.Println("\nMeasures:")
		fmt.Println("  1. Latency per explanation")
		fmt.Println("  2. Top-1 word agreement across seeds")
		fmt.Println("  3. Top-k overlap (Jaccard) against the first run")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *modelPath != "" {
		cfg.Model.Path = *modelPath
	}

	var st *store.BoltStore
	if cfg.Model.Path == "" {
		st, err = store.NewBoltStore(config.StorePath(*dataDir))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
	}

	artifact, err := usecase.LoadArtifact(cfg, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading model: %v\n", err)
		os.Exit(1)
	}
	rt, err := usecase.NewRuntime(artifact, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building model: %v\n", err)
		os.Exit(1)
	}
	target, err := rt.ClassIndex(cfg.Explain.Target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// uncached: every run draws its own samples
	eng, err := explainer.New(rt.Oracle, explainer.Config{
		KernelWidth: cfg.Explain.KernelWidth,
		RidgeAlpha:  cfg.Explain.RidgeAlpha,
		NumFeatures: cfg.Explain.NumFeatures,
		NumSamples:  cfg.Explain.NumSamples,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("EXPLANATION STABILITY BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Model:   %s (%s)\n", rt.Scope(), rt.Info.Kind)
	fmt.Printf("Target:  %s\n", rt.Classes()[target])
	fmt.Printf("Message: %q\n", *msg)
	fmt.Println(strings.Repeat("-", 70))

	ctx := context.Background()
	var (
		results   []domain.Explanation
		durations []time.Duration
	)
	for i := 0; i < *runs; i++ {
		seed := uint64(i + 1)
		start := time.Now()
		res, err := eng.ExplainDetailed(ctx, domain.ExplainRequest{
			Document:    *msg,
			TargetClass: target,
			NumFeatures: *topK,
			NumSamples:  *samples,
			Seed:        &seed,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Run %d failed: %v\n", i+1, err)
			os.Exit(1)
		}
		elapsed := time.Since(start)
		durations = append(durations, elapsed)
		results = append(results, res.Explanation)

		fmt.Printf("%2d. seed=%-3d %8s  R2=%.3f  %v\n", i+1, seed, elapsed.Round(time.Millisecond), res.Surrogate.Score, res.Explanation.Words())
	}

	top1 := topWordAgreement(results)
	overlap := meanJaccard(results)
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("STABILITY METRICS:\n")
	fmt.Printf("  Top-1 agreement:    %.0f%%\n", top1*100)
	fmt.Printf("  Top-%d overlap:      %.3f\n", *topK, overlap)
	fmt.Printf("  Median latency:     %s\n", durations[len(durations)/2].Round(time.Millisecond))
	fmt.Printf("  Max latency:        %s\n", durations[len(durations)-1].Round(time.Millisecond))

	if top1 >= 0.9 && overlap > 0.7 {
		fmt.Println("  Status: STABLE - explanations agree across seeds")
	} else if top1 >= 0.6 {
		fmt.Println("  Status: OK - top word mostly stable, tail varies")
	} else {
		fmt.Println("  Status: UNSTABLE - raise the sample count")
	}
}

// topWordAgreement is the share of runs whose first word matches the most
// common first word.
func topWordAgreement(results []domain.Explanation) float64 {
	counts := make(map[string]int)
	best := 0
	for _, r := range results {
		if len(r.Contributions) == 0 {
			continue
		}
		counts[r.Contributions[0].Word]++
		best = max(best, counts[r.Contributions[0].Word])
	}
	if len(results) == 0 {
		return 0
	}
	return float64(best) / float64(len(results))
}

func meanJaccard(results []domain.Explanation) float64 {
	if len(results) < 2 {
		return 1
	}
	ref := wordSet(results[0])
	total := 0.0
	for _, r := range results[1:] {
		total += jaccard(ref, wordSet(r))
	}
	return total / float64(len(results)-1)
}

func wordSet(e domain.Explanation) map[string]bool {
	set := make(map[string]bool, len(e.Contributions))
	for _, c := range e.Contributions {
		set[c.Word] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
