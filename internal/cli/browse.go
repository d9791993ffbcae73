package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
	"github.com/jereyes4/Wahl-Chains/pkg/render/text"
)

var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// browseCommand opens the interactive example viewer.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file>",
		Short: "Browse the examples of a file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := loadFile(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()
			aopts, err := c.analysisOptions(ctx, false, 0)
			if err != nil {
				return err
			}
			prec, err := c.precision(-1)
			if err != nil {
				return err
			}
			// Log lines would tear the alternate screen.
			aopts.Logger = newLogger(io.Discard, LogInfo)

			analyze := func(ex *record.Example) (*analysis.Result, error) {
				return runner.Analyze(ctx, f.Graph, ex, aopts)
			}
			m := newBrowseModel(f, analyze, prec)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// reportMsg carries a rendered example report back to the model.
type reportMsg struct {
	index  int
	report string
	err    error
}

// browseModel lists the examples of a file and shows the report of the
// selected one.
type browseModel struct {
	file      *record.File
	analyze   func(*record.Example) (*analysis.Result, error)
	precision int

	cursor int
	offset int
	height int

	loading bool
	report  string
	lines   []string
	scroll  int
	err     error
}

func newBrowseModel(f *record.File, analyze func(*record.Example) (*analysis.Result, error), precision int) browseModel {
	return browseModel{file: f, analyze: analyze, precision: precision, height: 15}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-7, 5)
	case reportMsg:
		m.loading = false
		if msg.index != m.cursor {
			return m, nil
		}
		m.err = msg.err
		m.report = msg.report
		m.lines = strings.Split(msg.report, "\n")
		m.scroll = 0
	case tea.KeyMsg:
		if m.report != "" || m.err != nil {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m browseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.file.Examples)
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(n-1, 0))
	case "pgup":
		m.cursor = max(m.cursor-m.height, 0)
	case "pgdown":
		m.cursor = min(m.cursor+m.height, max(n-1, 0))
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(n-1, 0)
	case "enter":
		if n == 0 || m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.reportCmd(m.cursor)
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m, nil
}

func (m browseModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace", "left", "h":
		m.report, m.lines, m.err = "", nil, nil
	case "up", "k":
		m.scroll = max(m.scroll-1, 0)
	case "down", "j":
		m.scroll = min(m.scroll+1, max(len(m.lines)-m.height, 0))
	}
	return m, nil
}

// reportCmd analyzes and renders the example at position i.
func (m browseModel) reportCmd(i int) tea.Cmd {
	g, ex, analyze, prec := m.file.Graph, m.file.Examples[i], m.analyze, m.precision
	return func() tea.Msg {
		res, err := analyze(ex)
		if err != nil {
			return reportMsg{index: i, err: err}
		}
		var b strings.Builder
		err = text.Render(&b, g, ex, res, text.Options{Precision: prec})
		return reportMsg{index: i, report: b.String(), err: err}
	}
}

func (m browseModel) View() string {
	if m.err != nil {
		return StyleTitle.Render(fmt.Sprintf("Example %d", m.cursor+1)) + "\n\n" +
			listErrorStyle.Render(errors.UserMessage(m.err)) + "\n\n" +
			listDimStyle.Render("esc back  q quit")
	}
	if m.report != "" {
		end := min(m.scroll+m.height, len(m.lines))
		return StyleTitle.Render(fmt.Sprintf("Example %d", m.cursor+1)) + "\n" +
			listDimStyle.Render("↑/↓ scroll  esc back  q quit") + "\n\n" +
			strings.Join(m.lines[m.scroll:end], "\n")
	}
	return m.listView()
}

func (m browseModel) listView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("%d examples", len(m.file.Examples))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ show  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.file.Examples))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		ex := m.file.Examples[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(ex.Index),
			ex.Shape.String(),
			strconv.FormatInt(ex.K2, 10),
			singularityLabel(ex),
			strconv.Itoa(len(ex.Used)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Shape", "K²", "Singularities", "Used").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			if m.offset+row == m.cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	status := fmt.Sprintf("  [%d/%d]", min(m.cursor+1, len(m.file.Examples)), len(m.file.Examples))
	if m.loading {
		status += "  analyzing..."
	}
	b.WriteString(listDimStyle.Render(status))
	return b.String()
}

// singularityLabel summarizes the singularities of ex, such as
// "(4,1) (9,2)" or "(a;2,3,4;9)".
func singularityLabel(ex *record.Example) string {
	var parts []string
	if q := ex.QHD; q != nil {
		parts = append(parts, fmt.Sprintf("(%s;%d,%d,%d;%d)", q.Type, q.P, q.Q, q.R, q.N))
	}
	for _, s := range ex.Singularities() {
		parts = append(parts, fmt.Sprintf("(%d,%d)", s.N, s.A))
	}
	return strings.Join(parts, " ")
}

