package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"spamlens/internal/adapter/fs"
	"spamlens/internal/usecase"
)

var (
	scanPerLine  bool
	scanExplain  bool
	scanSpamOnly bool
	scanJSON     bool
	scanSamples  int
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Classify every message file under a directory",
	Long: `Walk a directory, read message files matching the configured include
patterns, and classify each message. With --per-line every non-blank line is
a separate message.

Examples:
  spamlens scan ./inbox
  spamlens scan ./exports --per-line --explain --spam-only`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanPerLine, "per-line", false, "treat each line as a message (default from config)")
	scanCmd.Flags().BoolVar(&scanExplain, "explain", false, "explain each message (default from config)")
	scanCmd.Flags().BoolVar(&scanSpamOnly, "spam-only", false, "only print messages labelled with the target class")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "output as JSON")
	scanCmd.Flags().IntVarP(&scanSamples, "samples", "n", 0, "perturbed samples per explanation (default from config)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()
	opts := usecase.ScanOptions{
		PerLine:    cfg.Scan.PerLine,
		Explain:    cfg.Scan.Explain,
		NumSamples: scanSamples,
	}
	if cmd.Flags().Changed("per-line") {
		opts.PerLine = scanPerLine
	}
	if cmd.Flags().Changed("explain") {
		opts.Explain = scanExplain
	}

	walker, err := fs.NewWalker(cfg.Scan.Includes, cfg.Scan.Excludes)
	if err != nil {
		return err
	}

	app, cleanup, err := loadApp(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	scanUC := usecase.NewScanUseCase(walker, app.Classify, app.Explain)

	var (
		bar       *progressbar.ProgressBar
		barMu     sync.Mutex
		startTime = time.Now()
	)
	progress := func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Scanning[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)
		}
		bar.Set(done)

		if elapsed := time.Since(startTime); done > 0 && elapsed > 0 {
			rate := float64(done) / elapsed.Seconds()
			eta := time.Duration(float64(total-done)/rate) * time.Second
			bar.Describe(fmt.Sprintf("[cyan]Scanning[reset] ETA: %s", formatDuration(eta)))
		}
	}
	if scanJSON {
		progress = nil
	}

	result, err := scanUC.Scan(ctx, path, opts, progress)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	target := app.Runtime.Classes()[app.Explain.DefaultTarget()]
	if scanSpamOnly {
		filtered := result.Results[:0]
		for _, r := range result.Results {
			if r.Prediction.Label == target {
				filtered = append(filtered, r)
			}
		}
		result.Results = filtered
	}

	out := cmd.OutOrStdout()
	if scanJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	for _, r := range result.Results {
		loc, _ := filepath.Rel(path, r.Path)
		if r.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, r.Line)
		}
		fmt.Fprintf(out, "%-5s %5.1f%%  %s  %s\n", r.Prediction.Label, r.Prediction.Confidence*100, loc, truncate(r.Message, 60))
		if r.Explanation != nil && len(r.Explanation.Contributions) > 0 {
			fmt.Fprintf(out, "             words: %v\n", r.Explanation.Words())
		}
	}

	fmt.Fprintf(out, "\nScan complete:\n")
	fmt.Fprintf(out, "  Files:    %d\n", result.Files)
	fmt.Fprintf(out, "  Messages: %d\n", result.Messages)
	labels := make([]string, 0, len(result.Counts))
	for l := range result.Counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(out, "  %-9s %d\n", l+":", result.Counts[l])
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
