package todo

import (
	"reflect"
	"testing"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input   string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"ALL", FilterAll, false},
		{"completed", FilterCompleted, false},
		{"done", FilterCompleted, false},
		{"incompleted", FilterIncompleted, false},
		{"todo", FilterIncompleted, false},
		{" active ", FilterIncompleted, false},
		{"archived", FilterAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFilter(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFilter(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFilter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilterNext(t *testing.T) {
	if got := FilterAll.Next(); got != FilterIncompleted {
		t.Errorf("all.Next() = %q, want incompleted", got)
	}
	if got := FilterIncompleted.Next(); got != FilterCompleted {
		t.Errorf("incompleted.Next() = %q, want completed", got)
	}
	if got := FilterCompleted.Next(); got != FilterAll {
		t.Errorf("completed.Next() = %q, want all", got)
	}
	if got := Filter("bogus").Next(); got != FilterAll {
		t.Errorf("bogus.Next() = %q, want all", got)
	}
}

func TestFilterTasks(t *testing.T) {
	tasks := []Task{
		{ID: "1", Title: "A", Completed: false},
		{ID: "2", Title: "B", Completed: true},
		{ID: "3", Title: "C", Completed: false},
		{ID: "4", Title: "D", Completed: true},
	}

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"1", "2", "3", "4"}},
		{FilterCompleted, []string{"2", "4"}},
		{FilterIncompleted, []string{"1", "3"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := ids(FilterTasks(tasks, tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterTasks(%s) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}

	if len(tasks) != 4 || tasks[1].ID != "2" {
		t.Errorf("FilterTasks modified its input: %v", tasks)
	}
}

func TestFilterTasksEmpty(t *testing.T) {
	got := FilterTasks(nil, FilterCompleted)
	if got == nil || len(got) != 0 {
		t.Errorf("FilterTasks(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestCountTasks(t *testing.T) {
	c := CountTasks([]Task{{ID: "1"}, {ID: "2", Completed: true}, {ID: "3"}})
	want := Counts{Total: 3, Completed: 1, Incompleted: 2}
	if c != want {
		t.Errorf("CountTasks = %+v, want %+v", c, want)
	}
}

func TestDedupe(t *testing.T) {
	tasks := []Task{
		{ID: "a", Title: "first"},
		{ID: "b"},
		{ID: "a", Title: "second"},
		{ID: "a", Title: "third"},
	}
	got, dropped := Dedupe(tasks)
	if !reflect.DeepEqual(ids(got), []string{"a", "b"}) {
		t.Errorf("Dedupe ids = %v", ids(got))
	}
	if got[0].Title != "first" {
		t.Errorf("Dedupe kept %q, want first occurrence", got[0].Title)
	}
	if !reflect.DeepEqual(dropped, []string{"a", "a"}) {
		t.Errorf("dropped = %v", dropped)
	}
	if dups := DuplicateIDs(tasks); !reflect.DeepEqual(dups, []string{"a"}) {
		t.Errorf("DuplicateIDs = %v, want [a]", dups)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if len(id) != 36 {
			t.Fatalf("NewID() = %q, want 36-char UUID", id)
		}
		if seen[id] {
			t.Fatalf("NewID() repeated %q", id)
		}
		seen[id] = true
	}
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
