// Package inspectui provides the Bubble Tea spectrum inspector.
package inspectui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/spectrum"
	"github.com/verte-zerg/ramancert/internal/stats"
)

const (
	tabOverview = iota
	tabData
	tabNormalized
)

const (
	plotHeight = 12
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2EA043")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea spectrum inspector.
type Model struct {
	spec       *spectrum.Spectrum
	acceptance model.Acceptance
	summary    stats.Summary
	verdict    model.Verdict

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	dataTable   table.Model
	tableLayout tableLayout

	width  int
	height int

	baselineMode  bool
	baselineInput textinput.Model
	baselineError string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs an inspector for a loaded spectrum. A non-nil baseline
// re-normalizes against that minimum.
func NewModel(s *spectrum.Spectrum, acc model.Acceptance, baseline *float64) *Model {
	if baseline != nil {
		s.NormalizeFrom(*baseline)
	}
	m := &Model{
		spec:       s,
		acceptance: acc,
		tabs:       []string{"Overview", "Data", "Normalized"},
	}
	m.initBaselineInput()
	m.dataTable = newDataTable()
	m.initViewports()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.baselineMode {
			return m.updateBaselineInput(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabData {
			m.dataTable.Focus()
		} else {
			m.dataTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startBaselineInput()
		case "r":
			m.spec.Normalize()
			m.refresh()
			return m, nil
		case "g", "home":
			if m.activeTab == tabData {
				m.dataTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabData {
				m.dataTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabData {
				var cmd tea.Cmd
				m.dataTable, cmd = m.dataTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.baselineMode {
		return fitLines(m.renderBaselineModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initBaselineInput() {
	input := textinput.New()
	input.Prompt = "Baseline: "
	input.Placeholder = "own minimum"
	input.CharLimit = 24
	input.Cursor.SetMode(cursor.CursorBlink)
	m.baselineInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setTableSize(m.width, vpHeight)
	promptWidth := lipgloss.Width(m.baselineInput.Prompt)
	m.baselineInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabData {
		m.dataTable.Focus()
	} else {
		m.dataTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	info := fmt.Sprintf("Spectrum: %s  rows=%d  baseline=%s", m.spec.Name, m.summary.Rows, formatFloat(m.summary.Baseline))
	return tabs + "\n" + padLines(headerStyle.Render(truncateLine(info, m.width)), m.width)
}

func (m *Model) renderFooter() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Baseline: /  Reset: r  Quit: q")
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabData {
		view := tableMutedStyle.Render(m.dataTable.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

// refresh recomputes the summary and every tab after the normalization changed.
func (m *Model) refresh() {
	m.summary = stats.Summarize(m.spec)
	m.verdict = stats.Evaluate(m.summary, m.acceptance)
	rows := dataRows(m.spec)
	m.dataTable.SetRows(rows)
	m.tableLayout.rowCount = len(rows)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.spec, m.summary, m.verdict, width))
	m.viewports[tabNormalized].SetContent(renderPlot(m.spec, true, width))
}

func renderOverview(s *spectrum.Spectrum, sum stats.Summary, verdict model.Verdict, width int) string {
	cards := renderSummaryCards(sum, verdict, width)
	lines := []string{cards}
	for _, reason := range verdict.Reasons {
		lines = append(lines, errorStyle.Render(reason))
	}
	lines = append(lines, "", renderPlot(s, false, width))
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func renderSummaryCards(sum stats.Summary, verdict model.Verdict, width int) string {
	result := passStyle.Render(verdict.Label())
	if !verdict.Pass {
		result = failStyle.Render(verdict.Label())
	}
	cards := []string{
		metricCard("Rows", fmt.Sprintf("%d (%d dropped)", sum.Rows, sum.Dropped)),
		metricCard("Max intensity", fmt.Sprintf("%.1f%%", sum.Max)),
		metricCard("Peak position", fmt.Sprintf("%.1f cm-1", sum.PeakPosition)),
		metricCard("Shift range", fmt.Sprintf("%.0f..%.0f", sum.ShiftMin, sum.ShiftMax)),
		metricCard("Min intensity", fmt.Sprintf("%.1f%%", sum.Min)),
		cardStyle.Render(cardTitleStyle.Render("Result") + "\n" + result),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderPlot(s *spectrum.Spectrum, normalized bool, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderSpectrumPlot(&buf, s, normalized, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render plot: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func newDataTable() table.Model {
	t := table.New(
		table.WithColumns(dataColumns()),
		table.WithHeight(1),
	)
	t.SetStyles(dataTableStyles())
	return t
}

func dataColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 6},
		{Title: spectrum.ShiftColumn, Width: 18},
		{Title: spectrum.IntensityColumn, Width: 14},
		{Title: spectrum.NormalizedColumn, Width: 22},
	}
}

func dataRows(s *spectrum.Spectrum) []table.Row {
	formatted := stats.DataTableRows(s)
	rows := make([]table.Row, 0, len(formatted))
	for i, r := range formatted {
		rows = append(rows, table.Row{strconv.Itoa(i + 1), r[0], r[1], r[2]})
	}
	return rows
}

func dataTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) setTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.tableLayout.width == width && m.tableLayout.height == viewportHeight {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = viewportHeight
	m.dataTable.SetWidth(width)
	m.dataTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustTableHeight(height)
	if m.tableLayout.height != viewportHeight {
		m.tableLayout.height = viewportHeight
		m.dataTable.SetHeight(viewportHeight)
	}
}

// adjustTableHeight corrects for header and border lines so the rendered
// table fills the body exactly.
func (m *Model) adjustTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.dataTable.Height()
	for i := 0; i < 2; i++ {
		viewHeight := lipgloss.Height(m.dataTable.View())
		if viewHeight == target {
			return height
		}
		height += target - viewHeight
		if height < 1 {
			height = 1
		}
		m.dataTable.SetHeight(height)
	}
	return height
}

func (m *Model) startBaselineInput() (tea.Model, tea.Cmd) {
	m.baselineMode = true
	m.baselineError = ""
	m.baselineInput.SetValue("")
	return m, m.baselineInput.Focus()
}

func (m *Model) updateBaselineInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.baselineMode = false
		m.baselineError = ""
		m.baselineInput.Blur()
		return m, nil
	case tea.KeyEnter:
		if err := m.applyBaseline(m.baselineInput.Value()); err != nil {
			m.baselineError = err.Error()
			return m, nil
		}
		m.baselineMode = false
		m.baselineError = ""
		m.baselineInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.baselineInput, cmd = m.baselineInput.Update(msg)
	return m, cmd
}

// applyBaseline re-normalizes against the entered minimum. Empty input
// restores the spectrum's own minimum.
func (m *Model) applyBaseline(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		m.spec.Normalize()
		m.refresh()
		return nil
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return fmt.Errorf("invalid baseline (use a number)")
	}
	if err := m.spec.CheckBaseline(value); err != nil {
		return err
	}
	m.spec.NormalizeFrom(value)
	m.refresh()
	return nil
}

func (m *Model) renderBaselineModal() string {
	body := []string{
		cardValueStyle.Render("Normalization Baseline"),
		m.baselineInput.View(),
		headerStyle.Render(fmt.Sprintf("Own minimum is %s. Leave empty to use it.", formatFloat(m.spec.Min()))),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	if m.baselineError != "" {
		body = append(body, errorStyle.Render(m.baselineError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
