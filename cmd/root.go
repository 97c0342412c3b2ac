// Package cmd implements the CLI command structure for tasks.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/nibzard/tasks-go/internal/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tasks CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// env carries the loaded configuration and output streams to commands.
type env struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	out     io.Writer
	errOut  io.Writer
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		printUsage(fs, errOut)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, out)
		return nil
	}
	if *showVersion {
		return versionCommand(out)
	}

	e := &env{cfg: cws.Config, sources: cws, out: out, errOut: errOut}

	// Determine the subcommand
	// If no args, open the TUI
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	// Execute the subcommand
	switch subcommand {
	case "tui":
		return tuiCommand(ctx, e, remainingArgs)
	case "add":
		return addCommand(ctx, e, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, e, remainingArgs)
	case "toggle":
		return toggleCommand(ctx, e, remainingArgs)
	case "edit":
		return editCommand(ctx, e, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, e, remainingArgs)
	case "mv", "move":
		return mvCommand(ctx, e, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, e, remainingArgs)
	case "watch":
		return watchCommand(ctx, e, remainingArgs)
	case "logs", "tail":
		return logsCommand(ctx, e, remainingArgs)
	case "config":
		return configCommand(e, remainingArgs)
	case "version":
		return versionCommand(out)
	case "help":
		printUsage(fs, out)
		return nil
	default:
		fmt.Fprintf(errOut, "Unknown command: %s\n", subcommand)
		printUsage(fs, errOut)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tasks version %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasks - a to-do list for the terminal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasks [global options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                     Open the interactive list (default command)")
	fmt.Fprintln(w, "  add <title>             Add a task")
	fmt.Fprintln(w, "  ls [options]            List tasks")
	fmt.Fprintln(w, "  toggle <task>...        Flip completion of tasks")
	fmt.Fprintln(w, "  edit <task> <title>     Change a task's title")
	fmt.Fprintln(w, "  rm <task>...            Delete tasks")
	fmt.Fprintln(w, "  mv <task> <position>    Move a task (number, up, down, top, bottom)")
	fmt.Fprintln(w, "  doctor                  Check config and stored data")
	fmt.Fprintln(w, "  watch                   Print the list whenever the stored data changes")
	fmt.Fprintln(w, "  logs [-n N] [-f]        Show the log file")
	fmt.Fprintln(w, "  config [--example]      Show effective configuration")
	fmt.Fprintln(w, "  version                 Show version information")
	fmt.Fprintln(w, "  help                    Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A <task> is a list number (as shown by ls), a task id, or a unique id prefix.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List Options (use with 'ls' command):")
	fmt.Fprintln(w, "  -filter string")
	fmt.Fprintln(w, "        all, incompleted or completed (default \"all\")")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        text, json or yaml (default \"text\")")
}

// joinArgs joins positional args into one title.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
