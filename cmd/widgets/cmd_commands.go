package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shodgson/prosemirror-widgets/slash"
	"github.com/spf13/cobra"
)

// commandsCmd lists palette items
var commandsCmd = &cobra.Command{
	Use:   "commands [query]",
	Short: "List the slash palette items matching a query",
	Long: `Filters the palette the same way typing "/query" in the editor does:
a case-insensitive match against title, description and keywords.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCommands,
}

func runCommands(cmd *cobra.Command, args []string) error {
	items, err := loadItems()
	if err != nil {
		return err
	}
	query := ""
	if len(args) > 0 {
		query = strings.TrimPrefix(args[0], "/")
	}
	matches := slash.Filter(items, query)
	if len(matches) == 0 {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "No commands match %q\n", query)
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, item := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\n", item.ID, item.Title, item.Description)
	}
	return w.Flush()
}
