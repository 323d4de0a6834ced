package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// render writes v as indented JSON or the rows from tabulate as a table.
func (r *runner) render(cmd *cobra.Command, v any, tabulate func() ([]string, [][]string)) error {
	out := cmd.OutOrStdout()

	if r.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	}

	headers, rows := tabulate()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "nothing found")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})

	_, err := fmt.Fprintln(out, t.Render())

	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
