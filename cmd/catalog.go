package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oseda-dev/oseda/internal/mcp"
	"github.com/oseda-dev/oseda/internal/output"
)

var catalogCmd = &cobra.Command{
	Use:       "catalog [categories|colors|templates]",
	Short:     "List allowed categories, colors or templates",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"categories", "colors", "templates"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "categories"
		if len(args) > 0 {
			name = args[0]
		}
		return catalogRun(name)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func catalogRun(name string) error {
	entries, err := mcp.Catalog(name)
	if err != nil {
		return err
	}

	switch name {
	case "colors":
		table := ui.Table([]string{"Color", "Hex"})
		for _, e := range entries {
			table.Append([]string{e.Name, output.Swatch(e.Hex)})
		}
		table.Render()
	case "templates":
		table := ui.Table([]string{"Template", "Slides File"})
		for _, e := range entries {
			table.Append([]string{e.Name, "slides/" + e.File})
		}
		table.Render()
	default:
		table := ui.Table([]string{"Category", "Label"})
		for _, e := range entries {
			table.Append([]string{output.Cyan(e.Name), e.Label})
		}
		table.Render()
	}
	return nil
}
