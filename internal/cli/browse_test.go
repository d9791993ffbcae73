package cli

import (
	stderrors "errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

func testBrowseModel(t *testing.T, analyze func(*record.Example) (*analysis.Result, error)) browseModel {
	t.Helper()
	f, err := record.ReadJSONL(strings.NewReader(testFile))
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	return newBrowseModel(f, analyze, 2)
}

func press(t *testing.T, m browseModel, key tea.KeyMsg) (browseModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	return next.(browseModel), cmd
}

func rawReport(*record.Example) (*analysis.Result, error) { return nil, nil }

func TestBrowseNavigation(t *testing.T) {
	m := testBrowseModel(t, rawReport)
	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}

	m, _ = press(t, m, down)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d after down, want 1", m.cursor)
	}
	m, _ = press(t, m, down)
	if m.cursor != 1 {
		t.Errorf("cursor = %d past the end, want 1", m.cursor)
	}
	m, _ = press(t, m, up)
	m, _ = press(t, m, up)
	if m.cursor != 0 {
		t.Errorf("cursor = %d past the start, want 0", m.cursor)
	}

	view := m.View()
	for _, want := range []string{"2 examples", "single-chain", "(4,1)", "(4,2) (9,4)"} {
		if !strings.Contains(view, want) {
			t.Errorf("list view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowseReport(t *testing.T) {
	m := testBrowseModel(t, rawReport)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.loading {
		t.Fatal("enter should start rendering the report")
	}
	next, _ := m.Update(cmd())
	m = next.(browseModel)
	if !strings.Contains(m.View(), "Example with K^2 = 4, (n,a) = (4,1), length = 2") {
		t.Errorf("report view:\n%s", m.View())
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.report != "" || !strings.Contains(m.View(), "2 examples") {
		t.Errorf("esc should return to the list:\n%s", m.View())
	}
}

func TestBrowseReportError(t *testing.T) {
	m := testBrowseModel(t, func(*record.Example) (*analysis.Result, error) {
		return nil, stderrors.New("singular matrix")
	})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	next, _ := m.Update(cmd())
	m = next.(browseModel)
	if !strings.Contains(m.View(), "singular matrix") {
		t.Errorf("error view:\n%s", m.View())
	}
}

func TestBrowseStaleReport(t *testing.T) {
	m := testBrowseModel(t, rawReport)
	next, _ := m.Update(reportMsg{index: 1, report: "stale"})
	m = next.(browseModel)
	if m.report != "" {
		t.Error("report for another example should be ignored")
	}
}

func TestBrowseQuit(t *testing.T) {
	m := testBrowseModel(t, rawReport)
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not return tea.Quit")
	}
}
