package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ranker/internal/config"
	"ranker/internal/logging"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	stateDir     string
	storeBackend string
	seed         uint64

	// Loaded by the root command before any subcommand runs.
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ranker",
	Short: "Rank a list by answering pairwise questions",
	Long: `ranker turns a list of candidates into a full ranking by asking you which of
two candidates you prefer, one duel at a time.

It uses merge-insertion (Ford-Johnson) to ask close to the minimum number of
questions, and never asks a question whose answer already follows from earlier
ones. A ranking can be saved at any point and resumed later.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// setup builds the CLI logger and loads configuration. Flags override the
// config file and environment.
func setup(cmd *cobra.Command, args []string) error {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	var err error
	logger, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
		if stateDir != "" {
			path = filepath.Join(stateDir, "config.yaml")
		}
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if stateDir != "" {
		c.StateDir = stateDir
	}
	if storeBackend != "" {
		c.Store.Backend = storeBackend
	}
	if cmd.Flags().Changed("seed") {
		c.Pairing.Seed = seed
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Initialize(c.StateDir, c.Logging.Options()); err != nil {
		return err
	}
	logging.Boot("ranker %s: config=%s store=%s", cmd.Name(), path, c.Store.Backend)
	logger.Debug("configuration loaded",
		zap.String("path", path),
		zap.String("state_dir", c.StateDir),
		zap.String("store", c.Store.Backend))

	cfg = c
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <state-dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory for saved rankings and logs (default: .ranker)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Store backend: file or sqlite")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Seed for candidate pairing (0: from the clock)")

	newCmd.Flags().StringSliceVarP(&newOutputs, "out", "o", nil, "File to write the final ranking to (repeatable; .md for Markdown)")
	exportCmd.Flags().StringSliceVarP(&exportOutputs, "out", "o", nil, "File to write the ranking to (repeatable; .md for Markdown)")
	_ = exportCmd.MarkFlagRequired("out")
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete even if the ranking is unfinished")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
