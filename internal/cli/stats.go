package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

// maxCensusRange bounds the number of K² values of one census.
const maxCensusRange = 64

type statsOpts struct {
	census analysis.CensusOptions
	json   bool
}

// statsCommand counts surfaces, singularities and configurations per K².
func (c *CLI) statsCommand() *cobra.Command {
	opts := statsOpts{census: analysis.DefaultCensusOptions}
	cmd := &cobra.Command{
		Use:   "stats <file>...",
		Short: "Count surfaces, singularities and configurations per K²",
		Long: `Count the chain examples of the given files that are nef without warning,
unobstructed and Q-effective, together with the distinct (n,a) singularities
and configurations among them, for each K² in the range. QHD examples are not
counted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.Int64Var(&opts.census.MinK2, "min-k2", opts.census.MinK2, "smallest K² counted")
	f.Int64Var(&opts.census.MaxK2, "max-k2", opts.census.MaxK2, "largest K² counted")
	f.BoolVar(&opts.json, "json", false, "print JSON")
	return cmd
}

func (c *CLI) runStats(cmd *cobra.Command, paths []string, opts statsOpts) error {
	co := opts.census
	if co.MinK2 > co.MaxK2 || co.MaxK2-co.MinK2 >= maxCensusRange {
		return errors.New(errors.ErrCodeInvalidInput, "K² range [%d, %d] must be non-empty and span fewer than %d values", co.MinK2, co.MaxK2, maxCensusRange)
	}
	files := make([]*record.File, 0, len(paths))
	for _, path := range paths {
		f, err := loadFile(path)
		if err != nil {
			return err
		}
		files = append(files, f)
	}
	census := analysis.TakeCensus(files, co)
	loggerFromContext(cmd.Context()).Debug("census taken", "files", len(files), "surfaces", census.Surfaces)

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(census)
	}
	printKeyValue(out, "Surfaces", strconv.Itoa(census.Surfaces))
	fmt.Fprintln(out, censusTable(census))
	return nil
}

func censusTable(c *analysis.Census) string {
	rows := make([][]string, len(c.Buckets))
	for i, b := range c.Buckets {
		rows[i] = []string{
			strconv.FormatInt(b.K2, 10),
			strconv.Itoa(b.Surfaces),
			strconv.Itoa(b.Singularities),
			strconv.Itoa(b.Configurations),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("K²", "Surfaces", "Singularities", "Configurations").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
			if row == headerRow {
				return base.Inherit(styleHeader)
			}
			return base.Foreground(colorWhite)
		}).
		Render()
}
