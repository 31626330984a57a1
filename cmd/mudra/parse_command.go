package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/intent"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <transcript>",
		Short: "Show the intent a transcript parses to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			parser := intent.NewParser(cfg.ParserSections())
			in := parser.Parse(strings.Join(args, " "))

			if asJSON {
				return writeJSON(cmd, in)
			}

			rows := [][]string{
				{"action", string(in.Action)},
				{"confidence", strconv.FormatFloat(in.Confidence, 'f', 2, 64)},
			}
			rows = append(rows, slotRows(in.Slots)...)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the intent as JSON")
	return cmd
}

// slotRows lists the filled slots in name order.
func slotRows(s intent.Slots) [][]string {
	values := map[string]string{}
	if s.Query != "" {
		values["query"] = s.Query
	}
	if s.Mood != "" {
		values["mood"] = s.Mood
	}
	if s.PlaylistName != "" {
		values["playlist_name"] = s.PlaylistName
	}
	if s.NavigationTarget != "" {
		values["navigation_target"] = s.NavigationTarget
	}
	if s.SectionID != "" {
		values["section_id"] = s.SectionID
	}
	if s.ScrollAmount != "" {
		values["scroll_amount"] = string(s.ScrollAmount)
	}
	if s.Volume != nil {
		values["volume"] = strconv.Itoa(*s.Volume)
	}
	if s.TrackNumber != nil {
		values["track_number"] = strconv.Itoa(*s.TrackNumber)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, values[name]})
	}
	return rows
}
