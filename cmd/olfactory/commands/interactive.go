package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/olfactory/internal/logger"
)

func newInteractiveCmd(a *app) *cobra.Command {
	var flags predictFlags

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Describe memories one line at a time",
		Long: `Read one memory per line from stdin and print its notes. Enter an empty
line to skip, and "quit", "exit" or Ctrl+D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.verbose {
				a.log = logger.Quiet()
			}
			ctx := cmd.Context()
			engine, err := flags.open(ctx, a)
			if err != nil {
				return err
			}
			defer engine.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "What memory do you have about this scent you'd like to find?")
			fmt.Fprintln(out)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}

				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if text == "quit" || text == "exit" {
					break
				}
				if err := validateUserText(text); err != nil {
					fmt.Fprintf(out, "Error: %s\n\n", invalidTextMessage)
					continue
				}
				if err := runPrediction(ctx, engine, text, flags.notes, out, cmd.ErrOrStderr()); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out)
			return scanner.Err()
		},
	}
	flags.register(cmd)
	return cmd
}
