package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var stats bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent commands and their outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if stats {
				counts, err := st.Commands().CountByOutcome()
				if err != nil {
					return fmt.Errorf("count history: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, counts)
				}
				outcomes := make([]string, 0, len(counts))
				for o := range counts {
					outcomes = append(outcomes, o)
				}
				sort.Strings(outcomes)
				rows := make([][]string, 0, len(outcomes))
				for _, o := range outcomes {
					rows = append(rows, []string{o, strconv.Itoa(counts[o])})
				}
				fmt.Fprintln(out, renderTable([]string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			}

			commands, err := st.Commands().Recent(limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, commands)
			}
			if len(commands) == 0 {
				fmt.Fprintln(out, "No commands recorded")
				return nil
			}

			rows := make([][]string, 0, len(commands))
			for _, c := range commands {
				rows = append(rows, []string{
					strconv.FormatInt(c.Seq, 10),
					c.At.Local().Format("2006-01-02 15:04:05.000"),
					c.Channel,
					c.Action,
					c.Outcome,
					strconv.FormatFloat(c.Confidence, 'f', 2, 64),
					c.Message,
				})
			}
			headers := []string{"#", "Time", "Channel", "Action", "Outcome", "Conf", "Message"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of commands to show")
	cmd.Flags().BoolVar(&stats, "stats", false, "Show counts per outcome instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
