package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/olfactory/pkg/olfactory/store"
)

func newMappingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings [snapshot-id]",
		Short: "List stored snapshots or show one snapshot's mappings",
		Long: `Without arguments, list stored snapshots newest first. With a snapshot ID
(or "latest"), print every token with its note and volatility.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.loader().OpenStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

			if len(args) == 0 {
				infos, err := st.ListSnapshots(ctx)
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					fmt.Fprintln(out, "No snapshots stored.")
					return nil
				}
				fmt.Fprintln(tw, "ID\tCREATED\tTHRESHOLD\tENTRIES")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\n",
						info.ID, info.CreatedAt.Format(time.RFC3339), info.Threshold, info.Entries)
				}
				return tw.Flush()
			}

			id := args[0]
			if id == "latest" {
				id = ""
			}
			snap, err := st.LoadSnapshot(ctx, id)
			if err != nil {
				return err
			}
			printEntries(tw, snap)
			return tw.Flush()
		},
	}
	return cmd
}

func printEntries(tw *tabwriter.Writer, snap store.Snapshot) {
	fmt.Fprintf(tw, "# snapshot %s, threshold %.2f\n", snap.ID, snap.Threshold)
	fmt.Fprintln(tw, "TOKEN\tNOTE\tVOLATILITY")
	for _, e := range snap.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%d (%s)\n", e.Token, e.Note, int(e.Volatility), e.Volatility)
	}
}
