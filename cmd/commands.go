package cmd

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/output"
	"github.com/nibzard/tasks-go/internal/todo"
	"github.com/nibzard/tasks-go/internal/ui"
)

// withSession opens a session, runs fn and closes the session, flushing
// pending saves.
func withSession(ctx context.Context, e *env, fn func(s *session) error) (err error) {
	s, err := openSession(ctx, e.cfg, sessionOptions{logOut: e.errOut})
	if err != nil {
		return err
	}
	defer func() {
		// Flush even when ctx was canceled mid-command.
		if cerr := s.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// tuiCommand launches the interactive list.
func tuiCommand(ctx context.Context, e *env, args []string) (err error) {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	if !ui.IsTTY(e.out) {
		return fmt.Errorf("tui requires a TTY (try 'tasks ls')")
	}

	s, err := openSession(ctx, e.cfg, sessionOptions{logFile: true})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if s.loadErr != nil {
		fmt.Fprintf(e.errOut, "Warning: stored tasks could not be loaded, starting empty: %v\n", s.loadErr)
	}
	return ui.Run(ctx, s.store,
		ui.WithSaveStatus(s.repo.Status),
		ui.WithLogger(s.logger.With("component", "ui")),
	)
}

// addCommand appends a task.
func addCommand(ctx context.Context, e *env, args []string) error {
	title := joinArgs(args)
	if err := checkTitle(title); err != nil {
		return err
	}
	return withSession(ctx, e, func(s *session) error {
		if err := s.requireLoaded(); err != nil {
			return err
		}
		t, ok := s.store.Add(title)
		if !ok {
			return fmt.Errorf("title cannot be empty")
		}
		fmt.Fprintf(e.out, "Added %d: %s\n", s.store.Len(), t.Title)
		return nil
	})
}

// lsCommand lists tasks in collection order.
func lsCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("tasks ls", flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	filterArg := fs.String("filter", string(todo.FilterAll), "Filter (all, incompleted, completed)")
	formatArg := fs.String("format", string(output.FormatText), "Output format (text, json, yaml)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		*filterArg = remaining[0]
	}

	filter, err := todo.ParseFilter(*filterArg)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(*formatArg)
	if err != nil {
		return err
	}

	return withSession(ctx, e, func(s *session) error {
		if s.loadErr != nil {
			fmt.Fprintf(e.errOut, "Warning: stored tasks could not be loaded: %v\n", s.loadErr)
		}
		s.store.SetFilter(filter)
		all := s.store.Tasks()
		if err := output.WriteTasks(e.out, format, output.Entries(all, s.store.View())); err != nil {
			return err
		}
		if format == output.FormatText {
			if len(all) == 0 {
				fmt.Fprintln(e.out, "No tasks.")
				return nil
			}
			fmt.Fprint(e.out, output.FormatSummary(s.store.Counts()))
		}
		return nil
	})
}

// toggleCommand flips completion of each referenced task.
func toggleCommand(ctx context.Context, e *env, args []string) error {
	return withSession(ctx, e, func(s *session) error {
		if err := s.requireLoaded(); err != nil {
			return err
		}
		targets, err := resolveTasks(s.store.Tasks(), args)
		if err != nil {
			return err
		}
		for _, t := range targets {
			s.store.ToggleCompletion(t.ID)
			state := "incompleted"
			if !t.Completed {
				state = "completed"
			}
			fmt.Fprintf(e.out, "Marked %s: %s\n", state, t.Title)
		}
		return nil
	})
}

// editCommand replaces the title of one task.
func editCommand(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return ErrTaskRefRequired
	}
	title := joinArgs(args[1:])
	if err := checkTitle(title); err != nil {
		return err
	}
	return withSession(ctx, e, func(s *session) error {
		if err := s.requireLoaded(); err != nil {
			return err
		}
		t, err := resolveTask(s.store.Tasks(), args[0])
		if err != nil {
			return err
		}
		s.store.StartEdit(t.ID, t.Title)
		s.store.SetEditTitle(title)
		if !s.store.CommitEdit() {
			return fmt.Errorf("task not found: %s", args[0])
		}
		fmt.Fprintf(e.out, "Renamed: %s -> %s\n", t.Title, title)
		return nil
	})
}

// checkTitle rejects titles that are blank or could not be stored unchanged.
func checkTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if !utf8.ValidString(title) {
		return fmt.Errorf("title is not valid UTF-8")
	}
	return nil
}

// rmCommand deletes each referenced task.
func rmCommand(ctx context.Context, e *env, args []string) error {
	return withSession(ctx, e, func(s *session) error {
		if err := s.requireLoaded(); err != nil {
			return err
		}
		targets, err := resolveTasks(s.store.Tasks(), args)
		if err != nil {
			return err
		}
		for _, t := range targets {
			s.store.Delete(t.ID)
			fmt.Fprintf(e.out, "Deleted: %s\n", t.Title)
		}
		return nil
	})
}

// mvCommand moves one task to a new position.
func mvCommand(ctx context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: tasks mv <task> <position|up|down|top|bottom>")
	}
	return withSession(ctx, e, func(s *session) error {
		if err := s.requireLoaded(); err != nil {
			return err
		}
		all := s.store.Tasks()
		t, err := resolveTask(all, args[0])
		if err != nil {
			return err
		}
		from := todo.IndexOf(all, t.ID)

		to, err := targetPosition(args[1], from, len(all))
		if err != nil {
			return err
		}
		if to != from && !s.store.Move(t.ID, to-from) {
			return fmt.Errorf("could not move task: %s", args[0])
		}
		fmt.Fprintf(e.out, "Moved to %d: %s\n", to+1, t.Title)
		return nil
	})
}

// targetPosition turns a position argument into a 0-based index, clamped
// to the list.
func targetPosition(arg string, from, n int) (int, error) {
	var to int
	switch strings.ToLower(arg) {
	case "up":
		to = from - 1
	case "down":
		to = from + 1
	case "top", "first":
		to = 0
	case "bottom", "last":
		to = n - 1
	default:
		pos, err := strconv.Atoi(arg)
		if err != nil {
			return 0, fmt.Errorf("invalid position %q", arg)
		}
		to = pos - 1
	}
	if to < 0 {
		to = 0
	}
	if to > n-1 {
		to = n - 1
	}
	return to, nil
}

// configCommand prints the effective configuration or an example file.
func configCommand(e *env, args []string) error {
	fs := flag.NewFlagSet("tasks config", flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(e.out, config.ExampleConfig())
		return nil
	}
	return e.sources.Write(e.out)
}

// logsCommand prints the log file written while the TUI runs.
func logsCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("tasks logs", flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 50, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *follow {
		fmt.Fprintf(e.errOut, "Tailing: %s (Ctrl+C to stop)\n", e.cfg.LogFile)
	}
	return logging.Tail(ctx, e.out, e.cfg.LogFile, *n, *follow)
}
