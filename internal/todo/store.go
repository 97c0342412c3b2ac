package todo

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Repository persists the task collection.
//
// Save must not block on I/O: the store calls it after every mutation with a
// snapshot it will not touch again. Flush waits until every snapshot handed
// to Save so far has been written.
type Repository interface {
	Load(ctx context.Context) ([]Task, error)
	Save(tasks []Task)
	Flush(ctx context.Context) error
}

// EditSession is the in-progress title edit of one task.
type EditSession struct {
	ID    string
	Title string
}

// Listener is called with a snapshot of the collection after each mutation.
// The snapshot must be treated as read-only.
type Listener func(tasks []Task)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and reorder diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator replaces the id generator used by Add.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store holds the ordered task collection, the filter selection and the
// editing session. A nil Repository keeps everything in memory.
type Store struct {
	mu        sync.Mutex
	repo      Repository
	logger    *log.Logger
	newID     func() string
	tasks     []Task
	filter    Filter
	edit      *EditSession
	listeners map[int]Listener
	nextSub   int
}

// NewStore creates an empty store. Call Load to hydrate it.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		logger:    log.New(io.Discard),
		newID:     NewID,
		tasks:     []Task{},
		filter:    FilterAll,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the persisted one. On a load failure the
// collection becomes empty and the error is logged and returned; the store
// stays usable either way. Duplicate ids in stored data are dropped.
func (s *Store) Load(ctx context.Context) error {
	var (
		tasks []Task
		err   error
	)
	if s.repo != nil {
		tasks, err = s.repo.Load(ctx)
		if err != nil {
			s.logger.Error("Loading tasks failed, starting empty", "err", err)
			tasks = nil
		}
	}

	tasks, dropped := Dedupe(tasks)
	if len(dropped) > 0 {
		s.logger.Warn("Dropped tasks with duplicate ids", "ids", dropped)
	}

	s.mu.Lock()
	s.tasks = tasks
	s.edit = nil
	snapshot, listeners := cloneTasks(tasks), s.listenersLocked()
	s.mu.Unlock()

	s.logger.Debug("Loaded tasks", "count", len(snapshot))
	notify(listeners, snapshot)
	return err
}

// Tasks returns a copy of the ordered collection.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Get returns the task with id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := IndexOf(s.tasks, id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Counts returns totals for the whole collection.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CountTasks(s.tasks)
}

// Add appends a new incomplete task. A title that is empty after trimming
// is ignored and Add returns false.
func (s *Store) Add(title string) (Task, bool) {
	if strings.TrimSpace(title) == "" {
		return Task{}, false
	}

	task := Task{ID: s.newID(), Title: title}
	s.mutate(func(tasks []Task) ([]Task, bool, error) {
		next := make([]Task, 0, len(tasks)+1)
		next = append(next, tasks...)
		return append(next, task), true, nil
	})
	return task, true
}

// Delete removes the task with id. It returns false if no task matched.
func (s *Store) Delete(id string) bool {
	changed, _ := s.mutate(func(tasks []Task) ([]Task, bool, error) {
		i := IndexOf(tasks, id)
		if i < 0 {
			return tasks, false, nil
		}
		next := make([]Task, 0, len(tasks)-1)
		next = append(next, tasks[:i]...)
		return append(next, tasks[i+1:]...), true, nil
	})
	return changed
}

// Edit replaces the title of the task with id, keeping its position and
// completion. The editing session is cleared whether or not id matched.
// Titles are not validated here.
func (s *Store) Edit(id, newTitle string) bool {
	changed, _ := s.mutate(func(tasks []Task) ([]Task, bool, error) {
		i := IndexOf(tasks, id)
		if i < 0 {
			return tasks, false, nil
		}
		next := cloneTasks(tasks)
		next[i].Title = newTitle
		return next, true, nil
	})
	return changed
}

// ToggleCompletion flips the completion of the task with id.
func (s *Store) ToggleCompletion(id string) bool {
	changed, _ := s.mutate(func(tasks []Task) ([]Task, bool, error) {
		i := IndexOf(tasks, id)
		if i < 0 {
			return tasks, false, nil
		}
		next := cloneTasks(tasks)
		next[i].Completed = !next[i].Completed
		return next, true, nil
	})
	return changed
}

// Reorder replaces the collection order with newOrder. newOrder must hold
// each current id exactly once; otherwise nothing changes and
// ErrNotPermutation is returned. Only the ids of newOrder are used: titles
// and completion come from the current collection.
func (s *Store) Reorder(newOrder []Task) error {
	ids := make([]string, len(newOrder))
	for i, t := range newOrder {
		ids[i] = t.ID
	}
	return s.ReorderIDs(ids)
}

// ReorderIDs is Reorder keyed by ids.
func (s *Store) ReorderIDs(ids []string) error {
	_, err := s.mutate(func(tasks []Task) ([]Task, bool, error) {
		next, ok := permute(tasks, ids)
		if !ok {
			return tasks, false, ErrNotPermutation
		}
		return next, true, nil
	})
	if err != nil {
		s.logger.Warn("Rejected reorder", "err", err, "got", len(ids))
	}
	return err
}

// Move shifts the task with id by delta positions, clamped to the ends of
// the collection, as a Reorder of the whole list. It returns false if id is
// unknown or the task did not move.
func (s *Store) Move(id string, delta int) bool {
	tasks := s.Tasks()
	from := IndexOf(tasks, id)
	if from < 0 {
		return false
	}
	to := min(max(from+delta, 0), len(tasks)-1)
	if to == from {
		return false
	}
	return s.ReorderIDs(moveIDs(tasks, from, to)) == nil
}

// SetFilter changes the filter used by View. The collection is untouched.
func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Filter returns the current filter selection.
func (s *Store) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// View returns the tasks passing the current filter, in collection order.
func (s *Store) View() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterTasks(s.tasks, s.filter)
}

// StartEdit opens an editing session for id with currentTitle as the
// working title, replacing any open session. Unknown ids are ignored.
func (s *Store) StartEdit(id, currentTitle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if IndexOf(s.tasks, id) < 0 {
		return false
	}
	s.edit = &EditSession{ID: id, Title: currentTitle}
	return true
}

// SetEditTitle updates the working title of the open session, if any.
func (s *Store) SetEditTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit != nil {
		s.edit.Title = title
	}
}

// Editing returns the open editing session.
func (s *Store) Editing() (EditSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return EditSession{}, false
	}
	return *s.edit, true
}

// CommitEdit applies the working title of the open session and closes it.
// It returns false when no session is open or its task no longer exists.
func (s *Store) CommitEdit() bool {
	session, ok := s.Editing()
	if !ok {
		return false
	}
	return s.Edit(session.ID, session.Title)
}

// CancelEdit closes the editing session without saving.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
}

// Subscribe registers fn to be called after each mutation and load.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Close waits for pending saves. The in-memory state stays readable.
func (s *Store) Close(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Flush(ctx); err != nil {
		s.logger.Error("Flushing tasks failed", "err", err)
		return err
	}
	return nil
}

// mutate applies fn to the collection. A call that fn rejects with an
// error changes nothing, not even the editing session; every other call
// clears the session. When fn reports a change the new list is stored,
// handed to the repository in mutation order, and broadcast to listeners.
func (s *Store) mutate(fn func(tasks []Task) ([]Task, bool, error)) (bool, error) {
	s.mu.Lock()
	next, changed, err := fn(s.tasks)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.edit = nil
	if !changed {
		s.mu.Unlock()
		return false, nil
	}
	s.tasks = next
	if s.repo != nil {
		s.repo.Save(cloneTasks(next))
	}
	snapshot, listeners := cloneTasks(next), s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return true, nil
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []Listener, snapshot []Task) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}

// permute orders tasks by ids. ok is false unless ids is a permutation of
// the ids in tasks.
func permute(tasks []Task, ids []string) ([]Task, bool) {
	if len(ids) != len(tasks) {
		return nil, false
	}
	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	next := make([]Task, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, false
		}
		delete(byID, id)
		next = append(next, t)
	}
	return next, true
}

// moveIDs returns the ids of tasks with the task at from moved to to.
func moveIDs(tasks []Task, from, to int) []string {
	ids := make([]string, 0, len(tasks))
	for i, t := range tasks {
		if i != from {
			ids = append(ids, t.ID)
		}
	}
	ids = append(ids, "")
	copy(ids[to+1:], ids[to:])
	ids[to] = tasks[from].ID
	return ids
}
