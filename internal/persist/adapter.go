// Package persist stores the task collection as one JSON blob under one key
// and writes it in the background.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/nibzard/tasks-go/internal/kv"
	"github.com/nibzard/tasks-go/internal/todo"
)

// DefaultKey is the well-known storage key for the collection.
const DefaultKey = "@tasks"

// Adapter encodes the collection to JSON and reads and writes it under Key.
type Adapter struct {
	store     kv.Store
	key       string
	validator *Validator
}

// NewAdapter returns an adapter over store. An empty key means DefaultKey.
// A nil validator skips schema checks on load.
func NewAdapter(store kv.Store, key string, validator *Validator) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{store: store, key: key, validator: validator}
}

// Key returns the storage key.
func (a *Adapter) Key() string {
	return a.key
}

// Save writes the whole ordered collection, replacing any previous value.
// Ids and titles must be valid UTF-8 so that Load returns them unchanged.
func (a *Adapter) Save(ctx context.Context, tasks []todo.Task) error {
	if tasks == nil {
		tasks = []todo.Task{}
	}
	for i, t := range tasks {
		if !utf8.ValidString(t.ID) || !utf8.ValidString(t.Title) {
			err := fmt.Errorf("task %d (%q): %w", i+1, t.ID, ErrInvalidUTF8)
			return &SerializationError{Key: a.key, Op: "encode", Err: err}
		}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return &SerializationError{Key: a.key, Op: "encode", Err: err}
	}
	if err := a.store.Set(ctx, a.key, data); err != nil {
		return &StorageIOError{Key: a.key, Op: "write", Err: err}
	}
	return nil
}

// Load reads the collection. A missing key yields an empty collection and
// no error. On failure the returned collection is empty and the error is a
// *StorageIOError or *SerializationError.
func (a *Adapter) Load(ctx context.Context) ([]todo.Task, error) {
	data, ok, err := a.store.Get(ctx, a.key)
	if err != nil {
		return []todo.Task{}, &StorageIOError{Key: a.key, Op: "read", Err: err}
	}
	if !ok {
		return []todo.Task{}, nil
	}

	tasks, err := a.decode(data)
	if err != nil {
		return []todo.Task{}, err
	}
	return tasks, nil
}

func (a *Adapter) decode(data []byte) ([]todo.Task, error) {
	if a.validator != nil {
		if errs := a.validator.Validate(data); len(errs) > 0 {
			return nil, &SerializationError{Key: a.key, Op: "decode", Err: errors.Join(errs...)}
		}
	}

	var tasks []todo.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, &SerializationError{Key: a.key, Op: "decode", Err: err}
	}
	if tasks == nil {
		tasks = []todo.Task{}
	}
	return tasks, nil
}

// Report describes the stored blob without loading it into a store.
type Report struct {
	Key        string
	Present    bool
	Bytes      int
	Tasks      int
	Counts     todo.Counts
	Duplicates []string
	Errors     []error
	ReadErr    error
}

// Valid reports whether the blob is absent or decodes cleanly with unique ids.
func (r Report) Valid() bool {
	return r.ReadErr == nil && len(r.Errors) == 0 && len(r.Duplicates) == 0
}

// Check reads and validates the stored blob.
func (a *Adapter) Check(ctx context.Context) Report {
	report := Report{Key: a.key}

	data, ok, err := a.store.Get(ctx, a.key)
	if err != nil {
		report.ReadErr = &StorageIOError{Key: a.key, Op: "read", Err: err}
		return report
	}
	if !ok {
		return report
	}
	report.Present = true
	report.Bytes = len(data)

	if a.validator != nil {
		report.Errors = a.validator.Validate(data)
		if len(report.Errors) > 0 {
			return report
		}
	}

	var tasks []todo.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		report.Errors = append(report.Errors, &ValidationError{Err: err})
		return report
	}
	report.Tasks = len(tasks)
	report.Counts = todo.CountTasks(tasks)
	report.Duplicates = todo.DuplicateIDs(tasks)
	return report
}
