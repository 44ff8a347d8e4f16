package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify [message]",
	Short: "Classify a message as spam or ham",
	Long: `Classify a message with the configured model. The message is taken from
the arguments, or from stdin when none are given.

Examples:
  spamlens classify "Congratulations, you won a cruise"
  echo "see you at 5" | spamlens classify --json`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
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

	pred, err := app.Classify.Classify(ctx, msg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if classifyJSON {
		output, _ := json.MarshalIndent(pred, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}
	fmt.Fprintf(out, "%s (%.1f%% confidence)\n", pred.Label, pred.Confidence*100)
	return nil
}
