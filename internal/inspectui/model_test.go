package inspectui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/spectrum"
)

const sample = "1\n2\n3\n4\n5\n6\n7\n" +
	"100\t20\n" +
	"200\t70\n" +
	"300\t120\n"

func newTestModel(t *testing.T, acc model.Acceptance) *Model {
	t.Helper()
	s, err := spectrum.Parse(strings.NewReader(sample), "polystyrene")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m := NewModel(s, acc, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewFitsWindow(t *testing.T) {
	m := newTestModel(t, model.Acceptance{})
	view := m.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 40 {
		t.Fatalf("expected 40 lines, got %d", len(lines))
	}
	if !strings.Contains(view, "Overview") || !strings.Contains(view, "Peak position") {
		t.Fatalf("expected overview content:\n%s", view)
	}
}

func TestTabNavigationWraps(t *testing.T) {
	m := newTestModel(t, model.Acceptance{})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabNormalized {
		t.Fatalf("expected wrap to last tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabData {
		t.Fatalf("expected data tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "300.00") {
		t.Fatalf("expected data rows in table view")
	}
}

func TestBaselineInputRenormalizes(t *testing.T) {
	m := newTestModel(t, model.Acceptance{})
	m.Update(keyRunes("/"))
	if !m.baselineMode {
		t.Fatalf("expected baseline input mode")
	}
	m.Update(keyRunes("0"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.baselineMode {
		t.Fatalf("expected input to close after apply")
	}
	if got := m.spec.Normalized()[0]; got < 0.166 || got > 0.167 {
		t.Fatalf("expected first row normalized against 0, got %v", got)
	}
	if m.summary.Baseline != 0 {
		t.Fatalf("expected summary baseline 0, got %v", m.summary.Baseline)
	}

	m.Update(keyRunes("r"))
	if got := m.spec.Normalized()[0]; got != 0 {
		t.Fatalf("expected reset to own minimum, got %v", got)
	}
}

func TestBaselineInputRejectsInvalidValues(t *testing.T) {
	m := newTestModel(t, model.Acceptance{})
	for _, input := range []string{"abc", "500", "NaN", "-inf"} {
		m.Update(keyRunes("/"))
		m.Update(keyRunes(input))
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if !m.baselineMode || m.baselineError == "" {
			t.Fatalf("expected error for %q", input)
		}
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.baselineMode {
			t.Fatalf("expected esc to close input")
		}
	}
	if got := m.spec.Normalized()[0]; got != 0 {
		t.Fatalf("expected normalization unchanged, got %v", got)
	}
}

func TestOverviewShowsFailReasons(t *testing.T) {
	m := newTestModel(t, model.Acceptance{MinIntensity: 150})
	if m.verdict.Pass {
		t.Fatalf("expected fail verdict")
	}
	if !strings.Contains(m.View(), "below") {
		t.Fatalf("expected fail reason in overview")
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, model.Acceptance{})
	if _, cmd := m.Update(keyRunes("q")); cmd == nil {
		t.Fatalf("expected quit command")
	}
}
