// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/persist"
	"github.com/nibzard/tasks-go/internal/todo"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiModel)

// WithSaveStatus shows background save progress from fn in the footer.
func WithSaveStatus(fn func() persist.Status) TUIOption {
	return func(m *tuiModel) {
		m.saveStatus = fn
	}
}

// WithLogger sets the logger for user actions.
func WithLogger(logger *log.Logger) TUIOption {
	return func(m *tuiModel) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTickInterval sets how often the footer refreshes.
func WithTickInterval(d time.Duration) TUIOption {
	return func(m *tuiModel) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// Run starts the TUI over store and blocks until the user quits.
func Run(ctx context.Context, store *todo.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(store, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := store.Subscribe(func([]todo.Task) {
		go program.Send(changedMsg{})
	})
	defer unsubscribe()

	_, err := program.Run()
	return err
}

type inputMode int

const (
	modeNormal inputMode = iota
	modeAdd
	modeEdit
)

var (
	cursorStyle = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

type tuiModel struct {
	store        *todo.Store
	saveStatus   func() persist.Status
	logger       *log.Logger
	input        textinput.Model
	mode         inputMode
	edited       bool // the edit input changed since startEdit
	cursor       int
	showHelp     bool
	message      string
	messageErr   bool
	tickInterval time.Duration
}

type tickMsg time.Time

// changedMsg reports a mutation of the store.
type changedMsg struct{}

func newTUIModel(store *todo.Store, opts ...TUIOption) *tuiModel {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 0
	ti.Width = 50

	m := &tuiModel{
		store:        store,
		logger:       log.New(io.Discard),
		input:        ti,
		tickInterval: time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m, m.updateInput(msg)
		}
		return m, m.updateNormal(msg)
	case tickMsg:
		return m, tickCmd(m.tickInterval)
	case changedMsg:
		if _, editing := m.store.Editing(); m.mode == modeEdit && !editing {
			m.leaveInput()
		}
		m.clampCursor()
	}
	return m, nil
}

func (m *tuiModel) updateNormal(msg tea.KeyMsg) tea.Cmd {
	m.message = ""
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "?", "h":
		m.showHelp = !m.showHelp
	case "j", "down":
		m.cursor++
	case "k", "up":
		m.cursor--
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.store.View()) - 1
	case "a":
		m.mode = modeAdd
		m.input.Reset()
		m.input.Placeholder = "New task"
		return m.input.Focus()
	case "e", "enter":
		return m.startEdit()
	case " ", "x":
		if t, ok := m.selected(); ok {
			m.store.ToggleCompletion(t.ID)
			m.logger.Debug("Toggled task", "id", t.ID)
		}
	case "d", "delete":
		if t, ok := m.selected(); ok {
			m.store.Delete(t.ID)
			m.logger.Debug("Deleted task", "id", t.ID)
			m.setMessage(fmt.Sprintf("Deleted %q", t.Title), false)
		}
	case "J", "shift+down":
		m.moveSelected(1)
	case "K", "shift+up":
		m.moveSelected(-1)
	case "0":
		m.store.SetFilter(todo.FilterAll)
	case "1":
		m.store.SetFilter(todo.FilterIncompleted)
	case "2":
		m.store.SetFilter(todo.FilterCompleted)
	case "f", "tab":
		m.store.SetFilter(m.store.Filter().Next())
	}
	m.clampCursor()
	return nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		if m.mode == modeEdit {
			m.store.CancelEdit()
		}
		return tea.Quit
	case "esc":
		if m.mode == modeEdit {
			m.store.CancelEdit()
		}
		m.leaveInput()
		return nil
	case "enter":
		m.commitInput()
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeEdit && m.input.Value() != before {
		m.edited = true
		m.store.SetEditTitle(m.input.Value())
	}
	return cmd
}

func (m *tuiModel) startEdit() tea.Cmd {
	t, ok := m.selected()
	if !ok {
		return nil
	}
	if !m.store.StartEdit(t.ID, t.Title) {
		return nil
	}
	m.mode = modeEdit
	m.edited = false
	m.input.Placeholder = "Task title"
	m.input.SetValue(t.Title)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *tuiModel) commitInput() {
	// The input shows a sanitized copy of the title; an untouched session
	// keeps the stored one.
	if m.mode == modeEdit && !m.edited {
		m.store.CommitEdit()
		m.leaveInput()
		m.clampCursor()
		return
	}

	value := m.input.Value()
	if strings.TrimSpace(value) == "" {
		m.setMessage("Title cannot be empty", true)
		return
	}

	switch m.mode {
	case modeAdd:
		t, ok := m.store.Add(value)
		if !ok {
			m.setMessage("Title cannot be empty", true)
			return
		}
		m.logger.Debug("Added task", "id", t.ID)
		if i := todo.IndexOf(m.store.View(), t.ID); i >= 0 {
			m.cursor = i
		}
	case modeEdit:
		m.store.SetEditTitle(value)
		if session, ok := m.store.Editing(); ok {
			m.logger.Debug("Edited task", "id", session.ID)
		}
		m.store.CommitEdit()
	}
	m.leaveInput()
	m.clampCursor()
}

func (m *tuiModel) leaveInput() {
	m.mode = modeNormal
	m.edited = false
	m.input.Blur()
	m.input.Reset()
}

// moveSelected moves the selected task to the position of its neighbor in
// the current view.
func (m *tuiModel) moveSelected(delta int) {
	view := m.store.View()
	from := m.cursor
	to := from + delta
	if from < 0 || from >= len(view) || to < 0 || to >= len(view) {
		return
	}

	all := m.store.Tasks()
	i := todo.IndexOf(all, view[from].ID)
	j := todo.IndexOf(all, view[to].ID)
	if i < 0 || j < 0 {
		return
	}
	if m.store.Move(view[from].ID, j-i) {
		m.logger.Debug("Moved task", "id", view[from].ID, "to", j)
		m.cursor = to
	}
}

func (m *tuiModel) selected() (todo.Task, bool) {
	view := m.store.View()
	if m.cursor < 0 || m.cursor >= len(view) {
		return todo.Task{}, false
	}
	return view[m.cursor], true
}

func (m *tuiModel) clampCursor() {
	n := len(m.store.View())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) setMessage(msg string, isErr bool) {
	m.message = msg
	m.messageErr = isErr
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	writeOverview(&b, m.store.Counts(), m.store.Filter())
	m.writeTasks(&b)

	switch m.mode {
	case modeAdd:
		b.WriteString("Add: " + m.input.View() + "\n\n")
	case modeEdit:
		b.WriteString("Edit: " + m.input.View() + "\n\n")
	}

	if m.message != "" {
		if m.messageErr {
			b.WriteString(errorStyle.Render(m.message))
		} else {
			b.WriteString(m.message)
		}
		b.WriteString("\n\n")
	}
	if m.saveStatus != nil {
		writeSaveStatus(&b, m.saveStatus())
	}
	writeFooter(&b)
	return b.String()
}

func (m *tuiModel) writeTasks(b *strings.Builder) {
	view := m.store.View()
	if len(view) == 0 {
		if m.store.Len() == 0 {
			b.WriteString(dimStyle.Render("  No tasks yet. Press a to add one.") + "\n\n")
		} else {
			b.WriteString(dimStyle.Render("  No tasks match this filter.") + "\n\n")
		}
		return
	}

	for i, t := range view {
		b.WriteString(formatTask(t, i == m.cursor))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func writeTitle(b *strings.Builder) {
	title := "Tasks"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, counts todo.Counts, filter todo.Filter) {
	b.WriteString(fmt.Sprintf("  All: %d  Incompleted: %d  Completed: %d\n",
		counts.Total, counts.Incompleted, counts.Completed))
	b.WriteString(fmt.Sprintf("  Filter: %s\n\n", filter))
}

func writeSaveStatus(b *strings.Builder, st persist.Status) {
	switch {
	case st.LastError != nil:
		b.WriteString(errorStyle.Render("Save failed: "+st.LastError.Error()) + "\n\n")
	case st.Pending:
		b.WriteString(dimStyle.Render("Saving...") + "\n\n")
	case !st.LastSaved.IsZero():
		b.WriteString(dimStyle.Render("Saved at "+st.LastSaved.Format("15:04:05")) + "\n\n")
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  j/k, arrows  Move cursor\n")
	b.WriteString("  J/K          Move task down/up\n")
	b.WriteString("  a            Add task\n")
	b.WriteString("  e, enter     Edit title (enter saves, esc cancels)\n")
	b.WriteString("  space, x     Toggle completed\n")
	b.WriteString("  d            Delete task\n")
	b.WriteString("  0            Show all\n")
	b.WriteString("  1            Show incompleted\n")
	b.WriteString("  2            Show completed\n")
	b.WriteString("  f, tab       Cycle filter\n")
	b.WriteString("  ?, h         Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString(dimStyle.Render("Press ? for help | q to quit") + "\n")
}

func formatTask(t todo.Task, selected bool) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	pointer := "  "
	if selected {
		pointer = cursorStyle.Render("> ")
	}

	title := t.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	if t.Completed {
		title = doneStyle.Render(title)
	}
	return fmt.Sprintf("%s[%s] %s", pointer, mark, title)
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
