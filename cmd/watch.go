package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nibzard/tasks-go/internal/kv"
	"github.com/nibzard/tasks-go/internal/output"
	"github.com/nibzard/tasks-go/internal/todo"
)

// watchCommand prints the list each time the stored collection changes.
func watchCommand(ctx context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	store, adapter, err := openAdapter(e.cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	files, ok := store.(*kv.FileStore)
	if !ok {
		return fmt.Errorf("watch requires the %s backend (configured: %s)", kv.BackendFile, e.cfg.Backend)
	}

	show := func() {
		tasks, err := adapter.Load(ctx)
		if err != nil {
			fmt.Fprintf(e.errOut, "Warning: %v\n", err)
			return
		}
		output.WriteTasks(e.out, output.FormatText, output.Entries(tasks, tasks))
		fmt.Fprint(e.out, output.FormatSummary(todo.CountTasks(tasks)))
	}

	fmt.Fprintf(e.errOut, "Watching %s (Ctrl+C to stop)\n", files.Path(adapter.Key()))
	show()

	changes := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- files.Watch(ctx, adapter.Key(), func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
	}()

	for {
		select {
		case err := <-done:
			return err
		case <-changes:
			fmt.Fprintf(e.out, "\n--- %s ---\n", time.Now().Format("15:04:05"))
			show()
		}
	}
}
