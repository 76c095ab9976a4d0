package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stavelayout/pkg/config"
)

// optionsCommand creates the options command and its subcommands.
func (c *CLI) optionsCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the engraving options",
		Long: `List every numeric engraving option with its current value, default and
allowed range. With --options the values come from that TOML file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.Default()
			if path != "" {
				loaded, err := config.Load(path)
				if err != nil {
					return err
				}
				opts = loaded
			}
			fmt.Fprintln(c.out, optionsTable(opts))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "options", "", "engraving options file (TOML)")

	cmd.AddCommand(c.optionsInitCommand())
	return cmd
}

// optionsInitCommand creates "options init", which writes the defaults.
func (c *CLI) optionsInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a TOML file with the default options",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOptions(c.out, config.Default())
			}
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists (use --force to overwrite)", path)
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := writeOptions(f, config.Default()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Wrote default options")
			printFile(path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func writeOptions(w io.Writer, opts config.Options) error {
	return opts.Encode(w)
}

// optionsTable renders the option values; values that differ from their
// default are highlighted.
func optionsTable(opts config.Options) string {
	values := opts.Values()
	rows := make([][]string, 0, len(values))
	for i, v := range values {
		d := config.Descriptors[i]
		rows = append(rows, []string{
			v.Name,
			formatFloat(v.Value),
			formatFloat(d.Default),
			fmt.Sprintf("%s … %s", formatFloat(d.Min), formatFloat(d.Max)),
			d.Description,
		})
	}
	rows = append(rows,
		[]string{"justification.vertical", strconv.FormatBool(opts.Justification.Vertical), "false", "", "Justify systems vertically on the page"},
		[]string{"lyric.verse_collapse", strconv.FormatBool(opts.Lyric.VerseCollapse), "false", "", "Collapse empty verses"},
	)

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Option", "Value", "Default", "Range", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 1:
				if rows[row][1] != rows[row][2] {
					return base.Inherit(StyleNumber).Bold(true)
				}
				return base.Inherit(StyleValue)
			case 2, 3, 4:
				return base.Inherit(StyleDim)
			}
			return base
		}).
		Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
