// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasks-go/internal/todo"
)

// Format selects how task lists are printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
	}
}

// record is the machine-readable form of one listed task.
type record struct {
	Index     int    `json:"index" yaml:"index"`
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Entry is a task with its 1-based position in the full collection.
type Entry struct {
	Index int
	Task  todo.Task
}

// Entries pairs every task in view with its position in all.
func Entries(all, view []todo.Task) []Entry {
	entries := make([]Entry, 0, len(view))
	for _, t := range view {
		entries = append(entries, Entry{Index: todo.IndexOf(all, t.ID) + 1, Task: t})
	}
	return entries
}

// WriteTasks prints entries in the given format.
func WriteTasks(w io.Writer, format Format, entries []Entry) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records(entries))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records(entries)); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, e := range entries {
			if _, err := fmt.Fprint(w, FormatTask(e)); err != nil {
				return err
			}
		}
		return nil
	}
}

// FormatTask formats a task line for the text list.
// Format: "{N:>4}  [x] {TITLE}\n"
func FormatTask(e Entry) string {
	mark := " "
	if e.Task.Completed {
		mark = "x"
	}
	return fmt.Sprintf("%4d  [%s] %s\n", e.Index, mark, normalizeTitle(e.Task.Title))
}

// FormatSummary formats the counts footer, e.g. "3 tasks, 1 completed".
func FormatSummary(c todo.Counts) string {
	noun := "tasks"
	if c.Total == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%d %s, %d completed\n", c.Total, noun, c.Completed)
}

func records(entries []Entry) []record {
	out := make([]record, 0, len(entries))
	for _, e := range entries {
		out = append(out, record{
			Index:     e.Index,
			ID:        e.Task.ID,
			Title:     e.Task.Title,
			Completed: e.Task.Completed,
		})
	}
	return out
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
