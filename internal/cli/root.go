package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"spamlens/config"
	"spamlens/internal/logger"
)

var (
	cfgFile   string
	cfg       *config.Config
	rootDir   string
	modelPath string
	logLevel  string
	logJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "spamlens",
	Short: "Spamlens - classify SMS messages and explain which words made them spam",
	Long: `Spamlens classifies short text messages as spam or ham with a trained
linear model and explains each verdict by perturbing the message, fitting a
local linear surrogate and ranking the words that moved the prediction.

Example usage:
  spamlens model import model.json          # Store a trained model
  spamlens classify "WINNER! Claim now"     # Label a message
  spamlens explain "Free entry to win cash" # Label and explain
  spamlens scan ./inbox --per-line          # Classify message files
  spamlens serve --addr :8080               # Run the HTTP API`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if modelPath != "" {
			cfg.Model.Path = modelPath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-json") {
			cfg.Logging.JSON = logJSON
		}
		logger.SetupLogger(cfg.Logging.Level, cfg.Logging.JSON)

		return nil
	},
}

// Execute runs the root command; SIGINT and SIGTERM cancel the context
// handed to subcommands.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./spamlens.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "data directory holding .spamlens (default is current directory)")
	rootCmd.PersistentFlags().StringVarP(&modelPath, "model", "m", "", "model artifact file (overrides the stored model)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
