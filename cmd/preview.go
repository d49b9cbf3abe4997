package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oseda-dev/oseda/internal/preview"
)

var (
	previewStyle string
	previewWidth int
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the Markdown slides in the terminal",
	Long: `Render slides/slides.md one slide at a time with glamour.

Slides are separated by "---" lines, as in reveal.js. HTML projects cannot be
previewed; use 'oseda run' instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return previewRun()
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewStyle, "style", "", "Glamour style (default: preview.style)")
	previewCmd.Flags().IntVar(&previewWidth, "width", 80, "Word wrap width")
	rootCmd.AddCommand(previewCmd)
}

func previewRun() error {
	dir, err := projectDir()
	if err != nil {
		return err
	}

	md, err := preview.Load(dir)
	if err != nil {
		return err
	}

	style := previewStyle
	if style == "" {
		style = viper.GetString("preview.style")
	}
	out, err := preview.Render(md, style, previewWidth)
	if err != nil {
		return err
	}
	fmt.Fprint(ui.Out, out)
	return nil
}
