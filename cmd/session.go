package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/kv"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/persist"
	"github.com/nibzard/tasks-go/internal/todo"
)

// session wires storage, persistence and the task store for one command.
type session struct {
	cfg     *config.Config
	logger  *log.Logger
	kv      kv.Store
	adapter *persist.Adapter
	repo    *persist.Repository
	store   *todo.Store
	// loadErr is the error from the initial load, if any. The store is
	// empty in that case.
	loadErr error
	closers []io.Closer
}

// sessionOptions controls where logs go.
type sessionOptions struct {
	logOut  io.Writer
	logFile bool
}

func newLogger(cfg *config.Config, w io.Writer) *log.Logger {
	return logging.FromConfig(w, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
}

// openAdapter opens the configured backend and returns an adapter over it.
// The caller closes the returned kv store.
func openAdapter(cfg *config.Config) (kv.Store, *persist.Adapter, error) {
	var validator *persist.Validator
	if cfg.Validate {
		v, err := persist.NewValidator(cfg.SchemaFile)
		if err != nil {
			return nil, nil, fmt.Errorf("loading schema: %w", err)
		}
		validator = v
	}

	store, err := kv.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}
	return store, persist.NewAdapter(store, cfg.StorageKey, validator), nil
}

// openSession opens storage and loads the task collection.
func openSession(ctx context.Context, cfg *config.Config, opts sessionOptions) (*session, error) {
	s := &session{cfg: cfg}

	logOut := opts.logOut
	if opts.logFile {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, f)
		logOut = f
	}
	s.logger = newLogger(cfg, logOut)

	store, adapter, err := openAdapter(cfg)
	if err != nil {
		s.closeFiles()
		return nil, err
	}
	s.kv = store
	s.adapter = adapter

	s.repo = persist.NewRepository(adapter, persist.WriterOptions{
		Retries:    cfg.SaveRetries,
		RetryDelay: cfg.SaveRetryDelay(),
		Logger:     s.logger.With("component", "persist"),
	})
	s.store = todo.NewStore(s.repo, todo.WithLogger(s.logger.With("component", "store")))
	s.loadErr = s.store.Load(ctx)

	s.logger.Debug("Session opened",
		"backend", cfg.Backend,
		"data_dir", cfg.DataDir,
		"key", adapter.Key(),
		"tasks", s.store.Len(),
	)
	return s, nil
}

// requireLoaded refuses to modify a collection that could not be read, so a
// one-shot command never replaces unreadable data with a fresh list.
func (s *session) requireLoaded() error {
	if s.loadErr != nil {
		return fmt.Errorf("stored tasks could not be loaded (run 'tasks doctor'): %w", s.loadErr)
	}
	return nil
}

// Close flushes pending saves and releases storage.
func (s *session) Close(ctx context.Context) error {
	var errs []error
	saveErr := s.store.Close(ctx)
	if err := s.repo.Close(ctx); saveErr == nil {
		saveErr = err
	}
	if saveErr != nil {
		errs = append(errs, fmt.Errorf("saving tasks: %w", saveErr))
	}
	if err := s.kv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing storage: %w", err))
	}
	s.closeFiles()
	return errors.Join(errs...)
}

func (s *session) closeFiles() {
	for _, c := range s.closers {
		c.Close()
	}
	s.closers = nil
}
