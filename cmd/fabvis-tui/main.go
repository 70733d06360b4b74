// Fabvis TUI - interactive slice topology editor for the terminal.
//
// A host frontend over the editing engine: it renders the derived graph
// model as an outline, the validation issue list, and the submit gate, and
// translates keyboard interaction into the engine's gesture vocabulary
// (primary select, additive select, background click, context action).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fabvis/fabvis/pkg/config"
	"github.com/fabvis/fabvis/pkg/editor"
	"github.com/fabvis/fabvis/pkg/fabric"
	"github.com/fabvis/fabvis/pkg/graph"
	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/util"
	"github.com/fabvis/fabvis/pkg/validate"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1967d2")).
			MarginLeft(2).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1967d2"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d32f2f")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f9a825"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2e7d32")).
		Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			BorderStyle(lipgloss.RoundedBorder())

	menuStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1967d2")).
			Padding(0, 1).
			MarginLeft(4)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	slicesView view = iota
	topologyView
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Additive key.Binding
	Clear    key.Binding
	Menu     key.Binding
	Submit   key.Binding
	Refresh  key.Binding
	New      key.Binding
	Back     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select / open")),
	Additive: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "add to selection")),
	Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear / close")),
	Menu:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "context menu")),
	Submit:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submit")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new slice")),
	Back:     key.NewBinding(key.WithKeys("backspace"), key.WithHelp("bksp", "back")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Additive, k.Menu, k.Submit, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Additive},
		{k.Menu, k.Submit, k.Refresh, k.New},
		{k.Clear, k.Back, k.Quit},
	}
}

type model struct {
	ctrl fabric.Controller

	currentView view
	sliceTable  table.Model
	summaries   []slice.Summary

	session *editor.Session
	// elements is the flat cursor order over the graph model: container
	// first, then nodes and networks, then edges, matching model order.
	elements []string
	cursor   int

	menu      *editor.Menu
	menuIdx   int
	nameInput textinput.Model
	naming    bool

	help       help.Model
	keys       keyMap
	width      int
	height     int
	message    string
	messageErr bool
}

// Messages from async engine commands.
type (
	slicesMsg  []slice.Summary
	settledMsg struct{} // a session command settled; re-render derived views
	errMsg     error
)

func initialModel(ctrl fabric.Controller) model {
	columns := []table.Column{
		{Title: "Slice", Width: 24},
		{Title: "State", Width: 14},
		{Title: "Nodes", Width: 6},
		{Title: "Nets", Width: 6},
		{Title: "Pending", Width: 8},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(12))
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	s.Selected = selectedStyle
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "new-slice-name"
	ti.CharLimit = 64
	ti.Width = 32

	return model{
		ctrl:       ctrl,
		sliceTable: t,
		nameInput:  ti,
		help:       help.New(),
		keys:       keys,
	}
}

func (m model) Init() tea.Cmd {
	return m.loadSlices()
}

// ============================================================================
// Async commands
// ============================================================================

func (m model) loadSlices() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		summaries, err := ctrl.ListSlices(context.Background())
		if err != nil {
			return errMsg(err)
		}
		return slicesMsg(summaries)
	}
}

func (m model) openSlice(name string) tea.Cmd {
	s := editor.NewSession(m.ctrl, name)
	return func() tea.Msg {
		if err := s.Load(context.Background()); err != nil {
			return errMsg(err)
		}
		return sessionMsg{s}
	}
}

type sessionMsg struct{ s *editor.Session }

func (m model) createSlice(name string) tea.Cmd {
	s := editor.NewSession(m.ctrl, name)
	return func() tea.Msg {
		if err := s.Create(context.Background()); err != nil {
			return errMsg(err)
		}
		return sessionMsg{s}
	}
}

func (m model) runSubmit() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		if err := s.Submit(context.Background()); err != nil {
			return errMsg(err)
		}
		return settledMsg{}
	}
}

func (m model) runRefresh() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		if err := s.Refresh(context.Background()); err != nil {
			return errMsg(err)
		}
		return settledMsg{}
	}
}

func (m model) runDelete(cmd *editor.Command) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		if err := s.ExecuteDelete(context.Background(), cmd); err != nil {
			return errMsg(err)
		}
		return settledMsg{}
	}
}

// ============================================================================
// Update
// ============================================================================

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case errMsg:
		m.message = msg.Error()
		m.messageErr = true
		m.rebuildElements()
		return m, nil

	case slicesMsg:
		m.summaries = msg
		rows := make([]table.Row, len(msg))
		for i, s := range msg {
			pending := ""
			if s.Dirty {
				pending = "*"
			}
			rows[i] = table.Row{s.Name, string(s.State),
				fmt.Sprintf("%d", s.NodeCount), fmt.Sprintf("%d", s.NetworkCount), pending}
		}
		m.sliceTable.SetRows(rows)
		return m, nil

	case sessionMsg:
		m.session = msg.s
		m.currentView = topologyView
		m.cursor = 0
		m.message = ""
		m.messageErr = false
		m.rebuildElements()
		return m, nil

	case settledMsg:
		m.message = ""
		m.messageErr = false
		m.rebuildElements()
		return m, nil

	case tea.KeyMsg:
		if m.naming {
			return m.updateNaming(msg)
		}
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		switch m.currentView {
		case slicesView:
			return m.updateSlices(msg)
		case topologyView:
			return m.updateTopology(msg)
		}
	}
	return m, nil
}

func (m model) updateNaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := util.SanitizeName(strings.TrimSpace(m.nameInput.Value()))
		m.naming = false
		m.nameInput.Reset()
		if name == "" {
			return m, nil
		}
		return m, m.createSlice(name)
	case "esc":
		m.naming = false
		m.nameInput.Reset()
		return m, nil
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m model) updateSlices(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if row := m.sliceTable.SelectedRow(); row != nil {
			return m, m.openSlice(row[0])
		}
		return m, nil
	case key.Matches(msg, m.keys.New):
		m.naming = true
		m.nameInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadSlices()
	}
	var cmd tea.Cmd
	m.sliceTable, cmd = m.sliceTable.Update(msg)
	return m, cmd
}

func (m model) updateTopology(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending menu captures navigation until resolved or dismissed.
	if m.menu != nil {
		return m.updateMenu(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.session.Deactivate()
		m.session = nil
		m.currentView = slicesView
		return m, m.loadSlices()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.elements)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Select):
		if id := m.cursorID(); id != "" {
			m.session.Dispatch(editor.Gesture{Kind: editor.GesturePrimary, ElementID: id})
		}
	case key.Matches(msg, m.keys.Additive):
		if id := m.cursorID(); id != "" {
			m.session.Dispatch(editor.Gesture{Kind: editor.GestureAdditive, ElementID: id})
		}
	case key.Matches(msg, m.keys.Clear):
		m.session.Dispatch(editor.Gesture{Kind: editor.GestureBackground})

	case key.Matches(msg, m.keys.Menu):
		id := m.cursorID()
		if id == "" {
			return m, nil
		}
		menu, err := m.session.Dispatch(editor.Gesture{
			Kind:      editor.GestureContext,
			ElementID: id,
			At:        editor.Pointer{X: 0, Y: m.cursor},
		})
		if err != nil {
			m.message = err.Error()
			m.messageErr = true
			return m, nil
		}
		m.menu = menu
		m.menuIdx = 0

	case key.Matches(msg, m.keys.Submit):
		gate := m.session.Gate()
		if !gate.Enabled {
			return m, nil
		}
		if gate.Warn {
			// An invalid draft is not silently shipped. Point at the issue list.
			m.message = "fix validation errors before submitting"
			m.messageErr = true
			return m, nil
		}
		return m, m.runSubmit()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.runRefresh()
	}
	return m, nil
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.menuIdx > 0 {
			m.menuIdx--
		}
	case key.Matches(msg, m.keys.Down):
		if m.menuIdx < len(m.menu.Kinds)-1 {
			m.menuIdx++
		}
	case key.Matches(msg, m.keys.Clear):
		m.session.CloseContextMenu()
		m.menu = nil
	case key.Matches(msg, m.keys.Select):
		kind := m.menu.Kinds[m.menuIdx]
		m.menu = nil
		cmd, err := m.session.ResolveContextAction(kind)
		if err != nil {
			m.message = err.Error()
			m.messageErr = true
			return m, nil
		}
		if kind == editor.CommandDelete {
			return m, m.runDelete(cmd)
		}
		// Remote shell sessions cannot run inside the TUI event loop.
		m.message = fmt.Sprintf("run: fabvis -s %s ssh %s", m.session.Name(), cmd.Targets[0].Name)
		m.messageErr = false
	}
	return m, nil
}

// rebuildElements refreshes the cursor order from the current graph model
// and clamps the cursor.
func (m *model) rebuildElements() {
	m.elements = m.elements[:0]
	m.menu = nil
	if m.session == nil || m.session.Model() == nil {
		return
	}
	gm := m.session.Model()
	for _, n := range gm.Nodes {
		m.elements = append(m.elements, n.ID)
	}
	for _, e := range gm.Edges {
		m.elements = append(m.elements, e.ID)
	}
	if m.cursor >= len(m.elements) {
		m.cursor = len(m.elements) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) cursorID() string {
	if m.cursor < 0 || m.cursor >= len(m.elements) {
		return ""
	}
	return m.elements[m.cursor]
}

// ============================================================================
// View
// ============================================================================

func (m model) View() string {
	var b strings.Builder

	switch m.currentView {
	case slicesView:
		b.WriteString(titleStyle.Render("fabvis — slices"))
		b.WriteString("\n\n")
		if m.naming {
			b.WriteString("  New slice: " + m.nameInput.View() + "\n\n")
		}
		b.WriteString(m.sliceTable.View())
	case topologyView:
		b.WriteString(m.viewTopology())
	}

	if m.message != "" {
		b.WriteString("\n")
		if m.messageErr {
			b.WriteString(errorStyle.Render("  ✗ " + m.message))
		} else {
			b.WriteString(okStyle.Render("  " + m.message))
		}
	}
	b.WriteString("\n" + helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m model) viewTopology() string {
	var b strings.Builder
	sl := m.session.Slice()
	gm := m.session.Model()

	title := fmt.Sprintf("slice %s — %s", sl.Name, sl.State)
	if sl.Dirty {
		title += " *"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for i, id := range m.elements {
		line := m.renderElement(gm, id)
		switch {
		case m.session.IsSelected(id):
			line = selectedStyle.Render(line)
		case i == m.cursor:
			line = cursorStyle.Render(line)
		}
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		b.WriteString(prefix + line + "\n")

		if m.menu != nil && m.menu.TargetID == id {
			b.WriteString(m.renderMenu() + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderIssues())
	b.WriteString("\n")
	b.WriteString(m.renderGate())
	return b.String()
}

func (m model) renderElement(gm *graph.Model, id string) string {
	if n := gm.Node(id); n != nil {
		label := strings.ReplaceAll(n.Label, "\n", "  ")
		indent := ""
		if n.Parent != "" {
			indent = "  "
		}
		return fmt.Sprintf("%s[%s] %s", indent, n.Class, label)
	}
	if e := gm.Edge(id); e != nil {
		return dimStyle.Render(fmt.Sprintf("    %s ── %s (%s)", e.Source, e.Target, e.Label))
	}
	return id
}

func (m model) renderMenu() string {
	var lines []string
	for i, kind := range m.menu.Kinds {
		label := string(kind)
		switch kind {
		case editor.CommandDelete:
			label = fmt.Sprintf("Delete (%d selected)", len(m.menu.Selection))
		case editor.CommandOpenSession:
			label = "Open SSH session"
		}
		if i == m.menuIdx {
			label = selectedStyle.Render(label)
		}
		lines = append(lines, label)
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("no actions"))
	}
	return menuStyle.Render(strings.Join(lines, "\n"))
}

func (m model) renderIssues() string {
	result := m.session.Validation()
	if result == nil || len(result.Issues) == 0 {
		return okStyle.Render("  ✓ no issues")
	}
	var b strings.Builder
	for _, issue := range result.Issues {
		style := warnStyle
		tag := "WARN "
		if issue.Severity == validate.SeverityError {
			style = errorStyle
			tag = "ERROR"
		}
		b.WriteString("  " + style.Render(tag) + " " + issue.Message + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) renderGate() string {
	gate := m.session.Gate()
	label := gate.Label
	style := gateStyle
	switch {
	case !gate.Enabled:
		label = dimStyle.Render(label)
	case gate.Warn:
		// Clickable-looking but inert: pressing s surfaces the issues.
		style = style.BorderForeground(lipgloss.Color("#f9a825"))
		label = warnStyle.Render(label + " (fix issues first)")
	default:
		style = style.BorderForeground(lipgloss.Color("#2e7d32"))
		label = okStyle.Render(label)
	}
	return style.Render(label)
}

// ============================================================================
// Main
// ============================================================================

func main() {
	util.SetLogOutput(os.Stderr)
	util.SetLogLevel("error")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctrl := fabric.Controller(fabric.NewSimController())
	if cfg.RedisAddr != "" {
		if cache, err := fabric.NewCache(context.Background(), cfg.RedisAddr, "", 0); err == nil {
			ctrl = fabric.WithCache(ctrl, cache)
		}
	}

	p := tea.NewProgram(initialModel(ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui: %v", err)
	}
}
