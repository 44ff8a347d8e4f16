package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spamlens/internal/usecase"
)

var (
	modelImportName string
	modelJSON       bool
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage stored models",
	Long: `Import, list, inspect and delete model artifacts kept in .spamlens/spamlens.db.
The model named in the config (model.name, default "default") is used unless
--model points at an artifact file.`,
}

var modelImportCmd = &cobra.Command{
	Use:   "import <artifact.json>",
	Short: "Validate and store a model artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read artifact: %w", err)
		}
		st, err := openStore(cmd.Context(), GetConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		info, err := usecase.ImportModel(st, data, modelImportName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (version %s, %s, %d features, classes %v)\n",
			info.Name, info.Version, info.Kind, info.Features, info.Classes)
		return nil
	},
}

var modelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context(), GetConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		models, err := st.ListModels()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if modelJSON {
			output, _ := json.MarshalIndent(models, "", "  ")
			fmt.Fprintln(out, string(output))
			return nil
		}
		if len(models) == 0 {
			fmt.Fprintln(out, "No models stored. Import one with 'spamlens model import <file>'.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tVERSION\tKIND\tFEATURES\tIMPORTED")
		for _, m := range models {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", m.Name, m.Version, m.Kind, m.Features, m.ImportedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var modelShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a stored model's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context(), GetConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		info, _, err := st.GetModel(args[0])
		if err != nil {
			return err
		}
		output, _ := json.MarshalIndent(info, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	},
}

var modelDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context(), GetConfig())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteModel(args[0]); err != nil {
			return err
		}
		// explanations are keyed by model name and version; a re-import
		// under the same name must not reuse them
		if err := st.ClearExplanations(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	modelImportCmd.Flags().StringVar(&modelImportName, "name", "", "store under this name instead of the artifact's")
	modelListCmd.Flags().BoolVar(&modelJSON, "json", false, "output as JSON")
	modelCmd.AddCommand(modelImportCmd, modelListCmd, modelShowCmd, modelDeleteCmd)
	rootCmd.AddCommand(modelCmd)
}
