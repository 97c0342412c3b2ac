package todo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotPermutation is returned by Reorder when the new order does not hold
// exactly the ids of the current collection.
var ErrNotPermutation = errors.New("new order is not a permutation of the current tasks")

// Task represents a single to-do item.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// NewID returns a random (version 4) UUID string.
func NewID() string {
	return uuid.NewString()
}

// Filter selects which tasks a view shows.
type Filter string

const (
	FilterAll         Filter = "all"
	FilterCompleted   Filter = "completed"
	FilterIncompleted Filter = "incompleted"
)

// Filters lists the filters in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterIncompleted, FilterCompleted}
}

// ParseFilter parses a filter name. It accepts "done" for completed and
// "todo" or "active" for incompleted.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "incompleted", "incomplete", "todo", "active":
		return FilterIncompleted, nil
	default:
		return FilterAll, fmt.Errorf("invalid filter %q, must be one of: all, completed, incompleted", s)
	}
}

// Next returns the filter after f in display order, wrapping around.
func (f Filter) Next() Filter {
	all := Filters()
	for i, candidate := range all {
		if candidate == f {
			return all[(i+1)%len(all)]
		}
	}
	return FilterAll
}

// Match reports whether t passes the filter. Unknown filters pass everything.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterIncompleted:
		return !t.Completed
	default:
		return true
	}
}

// FilterTasks returns the tasks that pass f, in their original order.
// The input slice is not modified.
func FilterTasks(tasks []Task, f Filter) []Task {
	view := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			view = append(view, t)
		}
	}
	return view
}

// Counts summarizes a collection.
type Counts struct {
	Total       int
	Completed   int
	Incompleted int
}

// CountTasks counts tasks by completion.
func CountTasks(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Incompleted++
		}
	}
	return c
}

// Dedupe drops tasks whose id was already seen (first occurrence wins) and
// returns the removed ids.
func Dedupe(tasks []Task) ([]Task, []string) {
	seen := make(map[string]bool, len(tasks))
	out := make([]Task, 0, len(tasks))
	var dropped []string
	for _, t := range tasks {
		if seen[t.ID] {
			dropped = append(dropped, t.ID)
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, dropped
}

// DuplicateIDs returns each id that occurs more than once, in first-seen order.
func DuplicateIDs(tasks []Task) []string {
	counts := make(map[string]int, len(tasks))
	var dups []string
	for _, t := range tasks {
		counts[t.ID]++
		if counts[t.ID] == 2 {
			dups = append(dups, t.ID)
		}
	}
	return dups
}

// IndexOf returns the position of the task with id, or -1.
func IndexOf(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
