package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/olfactory/internal/logger"
	"github.com/cognicore/olfactory/pkg/olfactory"
	"github.com/cognicore/olfactory/pkg/olfactory/config"
	"github.com/cognicore/olfactory/pkg/olfactory/predict"
)

// defaultConfigPath is read when --config is not given and the file exists.
const defaultConfigPath = "olfactory.yaml"

// app carries state shared by the subcommands of one invocation.
type app struct {
	configPath string
	verbose    bool
	logMode    string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "olfactory",
		Short: "Map scent memories to fragrance notes",
		Long: `olfactory - find the fragrance notes behind a scent memory.

Training reads a labeled corpus of descriptions and their notes and learns
which note (or note category) each keyword points to. Prediction extracts
keywords from a new description and buckets the resolved notes into top,
middle and base notes.

Configuration is read from olfactory.yaml in the working directory, or from
the file given with --config.

Examples:
  # Learn mappings from training_set.csv
  olfactory train

  # Ask for notes
  olfactory predict "Grandma baking vanilla cookies in a warm kitchen"

  # Describe memories one per line
  olfactory interactive`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default olfactory.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&a.logMode, "log-mode", "dev", "log format: dev or prod")

	rootCmd.AddCommand(
		newTrainCmd(a),
		newPredictCmd(a),
		newInteractiveCmd(a),
		newMappingsCmd(a),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func (a *app) setup() error {
	log, err := logger.New(a.logMode, a.verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.log = log

	path := a.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); errors.Is(err, fs.ErrNotExist) {
			a.cfg = config.Default()
			return nil
		}
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.log.Debug("config loaded", zap.String("path", path))
	return nil
}

func (a *app) loader() *config.Loader {
	return &config.Loader{Config: a.cfg, Logger: a.log}
}

// engine builds the facade with every component. withCategories is false for
// training, which never expands categories.
func (a *app) engine(ctx context.Context, withCategories bool, sampler predict.Sampler) (*olfactory.Olfactory, error) {
	l := a.loader()

	extractor, err := l.Extractor()
	if err != nil {
		return nil, err
	}
	oracle, err := l.Oracle()
	if err != nil {
		return nil, err
	}
	opts := olfactory.Options{
		Oracle:              oracle,
		Extractor:           extractor,
		SimilarityThreshold: a.cfg.Training.SimilarityThreshold,
		Sampler:             sampler,
		Logger:              a.log,
	}
	if withCategories {
		if opts.Categories, err = l.Categories(); err != nil {
			return nil, err
		}
	}
	if opts.Store, err = l.OpenStore(ctx); err != nil {
		return nil, err
	}
	o, err := olfactory.New(opts)
	if err != nil {
		opts.Store.Close()
		return nil, err
	}
	return o, nil
}
