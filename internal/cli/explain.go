package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spamlens/internal/usecase"
)

var (
	explainTarget   string
	explainFeatures int
	explainSamples  int
	explainSeed     uint64
	explainJSON     bool
)

var explainCmd = &cobra.Command{
	Use:   "explain [message]",
	Short: "Classify a message and show the words behind the verdict",
	Long: `Classify a message and explain the probability of the target class
(default from config, usually "spam") by perturbing the message and fitting
a local linear surrogate. Words are ranked by their share of the total
attribution.

Examples:
  spamlens explain "Free entry in 2 a wkly comp to win FA Cup final tkts"
  spamlens explain -k 3 --samples 2000 --seed 7 "URGENT! call now"`,
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().StringVarP(&explainTarget, "target", "t", "", "class to explain (default from config)")
	explainCmd.Flags().IntVarP(&explainFeatures, "features", "k", 0, "number of words to show (default from config)")
	explainCmd.Flags().IntVarP(&explainSamples, "samples", "n", 0, "number of perturbed samples (default from config)")
	explainCmd.Flags().Uint64Var(&explainSeed, "seed", 0, "random seed for reproducible explanations")
	explainCmd.Flags().BoolVar(&explainJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	msg, err := readMessage(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	app, cleanup, err := loadApp(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := usecase.AnalyzeOptions{
		Target:      explainTarget,
		NumFeatures: explainFeatures,
		NumSamples:  explainSamples,
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = &explainSeed
	}

	an, err := app.Explain.Analyze(ctx, msg, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if explainJSON {
		output, _ := json.MarshalIndent(an, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Prediction: %s (%.1f%% confidence)\n", strings.ToUpper(an.Prediction.Label), an.Prediction.Confidence*100)
	if len(an.Explanation.Contributions) == 0 {
		fmt.Fprintln(out, "No single word moved the prediction.")
		return nil
	}
	fmt.Fprintln(out, "Top words:")
	for i, c := range an.Explanation.Contributions {
		fmt.Fprintf(out, "  %d. %-20s %5.1f%%\n", i+1, c.Word, c.Percentage)
	}
	return nil
}
