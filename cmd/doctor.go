package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/nibzard/tasks-go/internal/kv"
	"github.com/nibzard/tasks-go/internal/logging"
)

// errDoctorFailed is returned when doctor finds problems.
var errDoctorFailed = errors.New("doctor found problems")

// doctorCommand checks the configuration and the stored collection.
func doctorCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("tasks doctor", flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := e.cfg
	w := e.out
	allOK := true

	fmt.Fprintln(w, "Tasks Doctor")
	fmt.Fprintln(w, "============")
	fmt.Fprintln(w)

	// Config
	fmt.Fprintln(w, "Config:")
	if path := e.sources.ConfigFile(); path != "" {
		fmt.Fprintf(w, "  ✅ Config file: %s\n", path)
	} else {
		fmt.Fprintln(w, "  ✅ Config file: none (defaults)")
	}
	fmt.Fprintf(w, "  ✅ Backend: %s\n", cfg.Backend)
	fmt.Fprintf(w, "  ✅ Storage key: %s\n", cfg.StorageKey)
	if cfg.Validate {
		schema := cfg.SchemaFile
		if schema == "" {
			schema = "embedded"
		}
		fmt.Fprintf(w, "  ✅ Schema: %s\n", schema)
	} else {
		fmt.Fprintln(w, "  ⚠️  Schema validation disabled")
	}
	if cfg.Backend == kv.BackendMemory {
		fmt.Fprintln(w, "  ⚠️  Memory backend: tasks are not kept between runs")
	}
	if *verbose {
		fmt.Fprintf(w, "  Log level: %s, format: %s\n", logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
		fmt.Fprintf(w, "  Log file: %s\n", cfg.LogFile)
		fmt.Fprintf(w, "  Save retries: %d, %s apart\n", cfg.SaveRetries, cfg.SaveRetryDelay())
	}
	fmt.Fprintln(w)

	// Data directory
	fmt.Fprintf(w, "Data directory: %s\n", cfg.DataDir)
	if info, err := os.Stat(cfg.DataDir); err == nil {
		if info.IsDir() {
			fmt.Fprintln(w, "  ✅ OK")
		} else {
			fmt.Fprintln(w, "  ❌ Error: not a directory")
			allOK = false
		}
	} else if os.IsNotExist(err) {
		fmt.Fprintln(w, "  ✅ Not created yet (created on first save)")
	} else {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	}
	fmt.Fprintln(w)

	// Storage
	fmt.Fprintln(w, "Stored tasks:")
	store, adapter, err := openAdapter(cfg)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		fmt.Fprintln(w)
		return errDoctorFailed
	}
	defer store.Close()
	if *verbose {
		switch st := store.(type) {
		case *kv.FileStore:
			fmt.Fprintf(w, "  Location: %s\n", st.Path(adapter.Key()))
		case *kv.SQLiteStore:
			fmt.Fprintf(w, "  Location: %s (key %s)\n", st.Path(), adapter.Key())
		}
	}

	report := adapter.Check(ctx)
	switch {
	case report.ReadErr != nil:
		fmt.Fprintf(w, "  ❌ Read failed: %v\n", report.ReadErr)
	case !report.Present:
		fmt.Fprintf(w, "  ✅ Nothing stored under %s yet\n", report.Key)
	default:
		if *verbose {
			fmt.Fprintf(w, "  Size: %d bytes\n", report.Bytes)
		}
		for _, verr := range report.Errors {
			fmt.Fprintf(w, "  ❌ %v\n", verr)
		}
		if len(report.Duplicates) > 0 {
			fmt.Fprintf(w, "  ❌ Duplicate ids: %v\n", report.Duplicates)
		}
		if len(report.Errors) == 0 {
			fmt.Fprintf(w, "  ✅ %d tasks (%d completed, %d incompleted)\n",
				report.Tasks, report.Counts.Completed, report.Counts.Incompleted)
		}
	}
	if !report.Valid() {
		allOK = false
	}
	fmt.Fprintln(w)

	if !allOK {
		fmt.Fprintln(w, "Some checks failed.")
		return errDoctorFailed
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}
