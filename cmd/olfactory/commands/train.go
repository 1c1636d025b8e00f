package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/olfactory/pkg/olfactory/mapping"
)

func newTrainCmd(a *app) *cobra.Command {
	var (
		corpusPath string
		threshold  float64
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Learn token to note mappings from the training corpus",
		Long: `Read the training corpus (Description and Notes columns), resolve every
keyword to a note or note category and store the result as a new snapshot.
The newest snapshot is used by predict and interactive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if corpusPath != "" {
				a.cfg.Training.CorpusPath = corpusPath
			}
			if cmd.Flags().Changed("threshold") {
				a.cfg.Training.SimilarityThreshold = threshold
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			records, err := a.loader().Records()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			engine, err := a.engine(ctx, false, nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			snap, stats, err := engine.Train(ctx, records)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Snapshot %s: %d mappings from %d records (%d skipped)\n",
				snap.ID, len(snap.Entries), stats.RecordsSeen, stats.RecordsSkipped)
			for _, v := range []mapping.Volatility{mapping.Exact, mapping.Specific, mapping.Category} {
				fmt.Fprintf(out, "  %-8s %d\n", v, stats.Commits[v])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", "", "training corpus CSV (overrides training.corpus_path)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "similarity threshold in (0,1] (overrides training.similarity_threshold)")
	return cmd
}
