package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/olfactory/pkg/olfactory"
	"github.com/cognicore/olfactory/pkg/olfactory/internalerr"
	"github.com/cognicore/olfactory/pkg/olfactory/predict"
)

// predictFlags are shared by predict and interactive.
type predictFlags struct {
	notes    int
	snapshot string
	seed     int64
}

func (f *predictFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.notes, "notes", "n", 0, "notes drawn per category (overrides prediction.num_random_notes)")
	cmd.Flags().StringVar(&f.snapshot, "snapshot", "", "snapshot ID to use (default newest)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed for category sampling (default time based)")
}

// open builds the engine and activates the requested snapshot.
func (f *predictFlags) open(ctx context.Context, a *app) (*olfactory.Olfactory, error) {
	if f.notes == 0 {
		f.notes = a.cfg.Prediction.NumRandomNotes
	}
	var sampler predict.Sampler
	if f.seed != 0 {
		sampler = predict.NewSampler(f.seed)
	}
	engine, err := a.engine(ctx, true, sampler)
	if err != nil {
		return nil, err
	}
	if _, err := engine.Use(ctx, f.snapshot); err != nil {
		engine.Close()
		if errors.Is(err, internalerr.ErrNotFound) {
			return nil, fmt.Errorf("no trained mapping found, run 'olfactory train' first: %w", err)
		}
		return nil, err
	}
	return engine, nil
}

func newPredictCmd(a *app) *cobra.Command {
	var flags predictFlags

	cmd := &cobra.Command{
		Use:   "predict <text>...",
		Short: "Suggest top, middle and base notes for a memory",
		Long: `Extract keywords from the description, resolve each through the trained
mapping and print the notes. Only letters, whitespace and periods are accepted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if err := validateUserText(text); err != nil {
				return fmt.Errorf("%s: %w", invalidTextMessage, err)
			}

			ctx := cmd.Context()
			engine, err := flags.open(ctx, a)
			if err != nil {
				return err
			}
			defer engine.Close()

			return runPrediction(ctx, engine, text, flags.notes, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	flags.register(cmd)
	return cmd
}

// runPrediction prints the result. An empty category still prints the notes
// gathered so far.
func runPrediction(ctx context.Context, engine *olfactory.Olfactory, text string, n int, out, errOut io.Writer) error {
	res, err := engine.Predict(ctx, text, n)
	if errors.Is(err, internalerr.ErrCategoryExpansionEmpty) {
		fmt.Fprintf(errOut, "No notes found for the specified category (%v).\n", err)
		err = nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.Format())
	return nil
}
