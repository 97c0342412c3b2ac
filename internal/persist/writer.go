package persist

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/todo"
)

// Default retry settings for a failed write.
const (
	DefaultRetries    = 2
	DefaultRetryDelay = 200 * time.Millisecond
)

// saver is the synchronous write the Writer runs in the background.
type saver interface {
	Save(ctx context.Context, tasks []todo.Task) error
}

// WriterOptions configures a Writer.
type WriterOptions struct {
	// Retries is the number of extra attempts after a failed write.
	Retries int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
	Logger     *log.Logger
}

// DefaultWriterOptions returns the default retry policy with a discarding logger.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

// Status is the outcome of background writes so far.
type Status struct {
	Pending   bool // snapshots queued or in flight
	Writes    int  // successful writes
	Failures  int  // writes that failed after all retries
	LastError error
	LastSaved time.Time
}

// Writer saves snapshots on a single goroutine. At most one write is in
// flight. A snapshot that arrives while another is queued but not started
// replaces it, so writes land in mutation order and the last one wins.
type Writer struct {
	saver  saver
	opts   WriterOptions
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wake   chan struct{}
	stop   chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	next     []todo.Task
	hasNext  bool
	queued   uint64 // generation of the newest snapshot
	written  uint64 // generation of the newest finished write
	progress chan struct{}
	closed   bool
	status   Status
}

// NewWriter starts the background loop. Call Close to stop it.
func NewWriter(s saver, opts WriterOptions) *Writer {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Writer{
		saver:    s,
		opts:     opts,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		progress: make(chan struct{}),
	}
	go w.run()
	return w
}

// Save queues tasks for writing and returns immediately.
// The writer owns tasks after the call.
func (w *Writer) Save(tasks []todo.Task) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("Dropping save after close", "tasks", len(tasks))
		return
	}
	w.next = tasks
	w.hasNext = true
	w.queued++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every snapshot queued before the call has been written
// (or has failed). It returns the error of the last write, if it failed.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.queued
	for w.written < target {
		ch := w.progress
		w.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			w.mu.Lock()
			finished := w.written >= target
			w.mu.Unlock()
			if !finished {
				return ErrWriterClosed
			}
		}

		w.mu.Lock()
	}
	err := w.status.LastError
	w.mu.Unlock()
	return err
}

// Close flushes pending snapshots and stops the loop. Saves after Close are
// dropped.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.Flush(ctx)
	w.cancel()
	close(w.stop)
	<-w.done
	return err
}

// Status returns a copy of the current write status.
func (w *Writer) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.status
	st.Pending = w.written < w.queued
	return st
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case <-w.wake:
		}

		for {
			w.mu.Lock()
			if !w.hasNext {
				w.mu.Unlock()
				break
			}
			tasks, gen := w.next, w.queued
			w.next, w.hasNext = nil, false
			w.mu.Unlock()

			err := w.write(tasks)

			w.mu.Lock()
			w.written = gen
			if err != nil {
				w.status.Failures++
				w.status.LastError = err
			} else {
				w.status.Writes++
				w.status.LastError = nil
				w.status.LastSaved = time.Now()
			}
			close(w.progress)
			w.progress = make(chan struct{})
			w.mu.Unlock()
		}
	}
}

func (w *Writer) write(tasks []todo.Task) error {
	for attempt := 0; ; attempt++ {
		err := w.saver.Save(w.ctx, tasks)
		if err == nil {
			w.logger.Debug("Saved tasks", "count", len(tasks), "attempt", attempt+1)
			return nil
		}
		if attempt >= w.opts.Retries {
			w.logger.Error("Saving tasks failed", "err", err, "attempts", attempt+1)
			return err
		}
		w.logger.Warn("Saving tasks failed, retrying", "err", err, "attempt", attempt+1)

		select {
		case <-time.After(w.opts.RetryDelay):
		case <-w.ctx.Done():
			w.logger.Error("Saving tasks abandoned", "err", err)
			return err
		}
	}
}
