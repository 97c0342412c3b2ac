package ui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasks-go/internal/persist"
	"github.com/nibzard/tasks-go/internal/todo"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
}

func newModel(t *testing.T, titles ...string) (*tuiModel, *todo.Store) {
	t.Helper()
	store := todo.NewStore(nil, todo.WithIDGenerator(seqIDs()))
	for _, title := range titles {
		if _, ok := store.Add(title); !ok {
			t.Fatalf("Add(%q) failed", title)
		}
	}
	return newTUIModel(store), store
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *tuiModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func typeText(m *tuiModel, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func titlesOf(tasks []todo.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func equal(a, b []string) bool {
	return strings.Join(a, "|") == strings.Join(b, "|")
}

func TestAddTask(t *testing.T) {
	m, store := newModel(t)

	press(m, "a")
	if m.mode != modeAdd {
		t.Fatalf("mode = %v, want add", m.mode)
	}
	typeText(m, "Buy milk")
	press(m, "enter")

	if m.mode != modeNormal {
		t.Errorf("mode = %v after enter, want normal", m.mode)
	}
	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || tasks[0].Completed {
		t.Fatalf("tasks = %+v", tasks)
	}
}

func TestAddRejectsBlankTitle(t *testing.T) {
	m, store := newModel(t)

	press(m, "a")
	typeText(m, "   ")
	press(m, "enter")

	if store.Len() != 0 {
		t.Errorf("blank title was added")
	}
	if m.mode != modeAdd {
		t.Errorf("mode = %v, want add to stay open", m.mode)
	}
	if !strings.Contains(m.View(), "Title cannot be empty") {
		t.Errorf("missing error message in view")
	}

	press(m, "esc")
	if m.mode != modeNormal {
		t.Errorf("esc did not leave add mode")
	}
}

func TestToggleAndDelete(t *testing.T) {
	m, store := newModel(t, "A", "B", "C")

	press(m, "j", "space")
	if got, _ := store.Get("t2"); !got.Completed {
		t.Errorf("space did not toggle B")
	}
	press(m, "x")
	if got, _ := store.Get("t2"); got.Completed {
		t.Errorf("x did not toggle B back")
	}

	press(m, "d")
	if want := []string{"A", "C"}; !equal(titlesOf(store.Tasks()), want) {
		t.Errorf("after delete: %v, want %v", titlesOf(store.Tasks()), want)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	press(m, "d", "d", "d")
	if store.Len() != 0 || m.cursor != 0 {
		t.Errorf("len = %d cursor = %d", store.Len(), m.cursor)
	}
}

func TestEditCommit(t *testing.T) {
	m, store := newModel(t, "A", "B")

	press(m, "j", "e")
	if m.mode != modeEdit {
		t.Fatalf("mode = %v, want edit", m.mode)
	}
	session, ok := store.Editing()
	if !ok || session.ID != "t2" || session.Title != "B" {
		t.Fatalf("session = %+v, %v", session, ok)
	}

	typeText(m, "!")
	if session, _ := store.Editing(); session.Title != "B!" {
		t.Errorf("working title = %q, want B!", session.Title)
	}
	press(m, "enter")

	if got, _ := store.Get("t2"); got.Title != "B!" {
		t.Errorf("title = %q, want B!", got.Title)
	}
	if _, ok := store.Editing(); ok {
		t.Error("session still open after commit")
	}
}

func TestEditCancel(t *testing.T) {
	m, store := newModel(t, "A")

	press(m, "e")
	typeText(m, " changed")
	press(m, "esc")

	if got, _ := store.Get("t1"); got.Title != "A" {
		t.Errorf("title = %q, want A", got.Title)
	}
	if _, ok := store.Editing(); ok {
		t.Error("session still open after cancel")
	}
	if m.mode != modeNormal {
		t.Errorf("mode = %v", m.mode)
	}
}

func TestEditRejectsBlankTitle(t *testing.T) {
	m, store := newModel(t, "A")

	press(m, "e", "backspace")
	press(m, "enter")

	if got, _ := store.Get("t1"); got.Title != "A" {
		t.Errorf("title = %q, want A", got.Title)
	}
	if m.mode != modeEdit {
		t.Errorf("edit mode closed on blank title")
	}
}

func TestEditWithoutChangesKeepsTitle(t *testing.T) {
	long := strings.Repeat("a", 300)
	m, store := newModel(t, long, "tab\there")

	press(m, "e", "enter")
	if got, _ := store.Get("t1"); got.Title != long {
		t.Errorf("long title changed: %d runes, want 300", len([]rune(got.Title)))
	}

	press(m, "j", "e")
	if session, _ := store.Editing(); session.Title != "tab\there" {
		t.Errorf("working title = %q, want the stored title", session.Title)
	}
	press(m, "enter")
	if got, _ := store.Get("t2"); got.Title != "tab\there" {
		t.Errorf("title = %q, want %q", got.Title, "tab\there")
	}
	if m.mode != modeNormal {
		t.Errorf("mode = %v after enter, want normal", m.mode)
	}
}

func TestEditLongTitleAppends(t *testing.T) {
	long := strings.Repeat("a", 300)
	m, store := newModel(t, long)

	press(m, "e")
	typeText(m, "!")
	press(m, "enter")
	if got, _ := store.Get("t1"); got.Title != long+"!" {
		t.Errorf("title has %d runes, want 301", len([]rune(got.Title)))
	}
}

func TestEditClosedByOtherMutation(t *testing.T) {
	m, store := newModel(t, "A", "B")

	press(m, "e")
	store.ToggleCompletion("t2")
	m.Update(changedMsg{})

	if m.mode != modeNormal {
		t.Errorf("mode = %v, want normal after external mutation", m.mode)
	}
}

func TestMoveTask(t *testing.T) {
	m, store := newModel(t, "A", "B", "C")

	press(m, "J")
	if want := []string{"B", "A", "C"}; !equal(titlesOf(store.Tasks()), want) {
		t.Errorf("after J: %v, want %v", titlesOf(store.Tasks()), want)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	press(m, "J", "J")
	if want := []string{"B", "C", "A"}; !equal(titlesOf(store.Tasks()), want) {
		t.Errorf("after J at end: %v, want %v", titlesOf(store.Tasks()), want)
	}

	press(m, "K", "K", "K")
	if want := []string{"A", "B", "C"}; !equal(titlesOf(store.Tasks()), want) {
		t.Errorf("after K: %v, want %v", titlesOf(store.Tasks()), want)
	}
}

func TestMoveWithinFilteredView(t *testing.T) {
	m, store := newModel(t, "A", "B", "C", "D")
	store.ToggleCompletion("t2")

	// incompleted view is A, C, D; moving A down puts it where C was
	press(m, "1", "J")
	if want := []string{"B", "C", "A", "D"}; !equal(titlesOf(store.Tasks()), want) {
		t.Errorf("got %v, want %v", titlesOf(store.Tasks()), want)
	}
}

func TestFilterKeys(t *testing.T) {
	m, store := newModel(t, "A", "B", "C")
	store.ToggleCompletion("t2")

	tests := []struct {
		key    string
		filter todo.Filter
		view   []string
	}{
		{"2", todo.FilterCompleted, []string{"B"}},
		{"1", todo.FilterIncompleted, []string{"A", "C"}},
		{"0", todo.FilterAll, []string{"A", "B", "C"}},
		{"f", todo.FilterIncompleted, []string{"A", "C"}},
		{"f", todo.FilterCompleted, []string{"B"}},
		{"f", todo.FilterAll, []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		press(m, tt.key)
		if store.Filter() != tt.filter {
			t.Errorf("after %q: filter = %q, want %q", tt.key, store.Filter(), tt.filter)
		}
		if got := titlesOf(store.View()); !equal(got, tt.view) {
			t.Errorf("after %q: view = %v, want %v", tt.key, got, tt.view)
		}
	}
}

func TestCursorClampsToFilteredView(t *testing.T) {
	m, store := newModel(t, "A", "B", "C")
	store.ToggleCompletion("t1")

	press(m, "j", "j", "j", "j")
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	press(m, "2")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after filter, want 0", m.cursor)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestTypingQDoesNotQuitWhileAdding(t *testing.T) {
	m, store := newModel(t)
	press(m, "a")
	typeText(m, "quit smoking")
	press(m, "enter")
	if got := titlesOf(store.Tasks()); !equal(got, []string{"quit smoking"}) {
		t.Errorf("tasks = %v", got)
	}
}

func TestViewRendering(t *testing.T) {
	m, store := newModel(t, "Buy milk", "Walk dog")
	store.ToggleCompletion("t2")

	out := m.View()
	for _, want := range []string{"Tasks", "All: 2", "Completed: 1", "[ ] Buy milk", "Walk dog", ">"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}

	press(m, "2")
	out = m.View()
	if strings.Contains(out, "Buy milk") {
		t.Errorf("completed filter still shows incompleted task:\n%s", out)
	}

	press(m, "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help not shown")
	}
}

func TestViewEmptyStates(t *testing.T) {
	m, store := newModel(t)
	if !strings.Contains(m.View(), "No tasks yet") {
		t.Error("missing empty state")
	}
	store.Add("A")
	press(m, "2")
	if !strings.Contains(m.View(), "No tasks match this filter") {
		t.Error("missing empty filter state")
	}
}

func TestSaveStatus(t *testing.T) {
	st := persist.Status{LastError: errors.New("disk full")}
	m, _ := newModel(t)
	WithSaveStatus(func() persist.Status { return st })(m)

	if !strings.Contains(m.View(), "Save failed: disk full") {
		t.Error("missing save failure")
	}

	st = persist.Status{Pending: true}
	if !strings.Contains(m.View(), "Saving...") {
		t.Error("missing pending status")
	}

	st = persist.Status{LastSaved: time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)}
	if !strings.Contains(m.View(), "Saved at 03:04:05") {
		t.Error("missing saved time")
	}
}

func TestTickReschedules(t *testing.T) {
	m, _ := newModel(t)
	WithTickInterval(time.Millisecond)(m)
	if m.Init() == nil {
		t.Fatal("Init returned no command")
	}
	if _, cmd := m.Update(tickMsg(time.Now())); cmd == nil {
		t.Error("tick was not rescheduled")
	}
}

func TestIsTTY(t *testing.T) {
	var buf bytes.Buffer
	if IsTTY(&buf) {
		t.Error("buffer reported as TTY")
	}
}
