package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/nibzard/tasks-go/internal/todo"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// resolveTask finds the task named by ref.
//
// Resolution rules:
// 1. All digits: 1-based position in the full list
// 2. Exact id match
// 3. Unique id prefix
func resolveTask(tasks []todo.Task, ref string) (todo.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return todo.Task{}, ErrTaskRefRequired
	}

	if isAllDigits(ref) {
		n, err := strconv.Atoi(ref)
		if err != nil || n < 1 || n > len(tasks) {
			return todo.Task{}, fmt.Errorf("no task at position %s (have %d)", ref, len(tasks))
		}
		return tasks[n-1], nil
	}

	if i := todo.IndexOf(tasks, ref); i >= 0 {
		return tasks[i], nil
	}

	var matches []todo.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return todo.Task{}, fmt.Errorf("task not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return todo.Task{}, fmt.Errorf("ambiguous task reference %q matches %d tasks", ref, len(matches))
	}
}

// resolveTasks resolves every ref, failing on the first miss or a repeat.
func resolveTasks(tasks []todo.Task, refs []string) ([]todo.Task, error) {
	if len(refs) == 0 {
		return nil, ErrTaskRefRequired
	}
	seen := make(map[string]bool, len(refs))
	out := make([]todo.Task, 0, len(refs))
	for _, ref := range refs {
		t, err := resolveTask(tasks, ref)
		if err != nil {
			return nil, err
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("task %s given more than once", ref)
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
