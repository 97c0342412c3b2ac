package persist

import (
	"context"

	"github.com/nibzard/tasks-go/internal/todo"
)

// Repository loads through the Adapter and saves through a Writer.
type Repository struct {
	adapter *Adapter
	writer  *Writer
}

// NewRepository starts a Writer over adapter.
func NewRepository(adapter *Adapter, opts WriterOptions) *Repository {
	return &Repository{
		adapter: adapter,
		writer:  NewWriter(adapter, opts),
	}
}

// Load reads the stored collection synchronously.
func (r *Repository) Load(ctx context.Context) ([]todo.Task, error) {
	return r.adapter.Load(ctx)
}

// Save queues a snapshot for background writing.
func (r *Repository) Save(tasks []todo.Task) {
	r.writer.Save(tasks)
}

// Flush waits for queued snapshots.
func (r *Repository) Flush(ctx context.Context) error {
	return r.writer.Flush(ctx)
}

// Status returns the background write status.
func (r *Repository) Status() Status {
	return r.writer.Status()
}

// Close flushes and stops the writer. The kv store is left open.
func (r *Repository) Close(ctx context.Context) error {
	return r.writer.Close(ctx)
}

var _ todo.Repository = (*Repository)(nil)
