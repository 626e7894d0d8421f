package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/untoldecay/mentor/internal/config"
	"github.com/untoldecay/mentor/internal/importer"
	"github.com/untoldecay/mentor/internal/logging"
	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/storage/sqlite"
	"github.com/untoldecay/mentor/internal/ui"
)

// storeAnnotation marks commands that need the database. The value is
// storeRead or storeWrite; commands without it never open the store.
const (
	storeAnnotation = "mentor/store"
	storeRead       = "read"
	storeWrite      = "write"
)

// app holds everything one invocation needs. Nothing lives in package
// globals so tests can run many invocations side by side.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    importer.Clock

	// workDir resolves relative paths and anchors the config search.
	// Empty means the process working directory.
	workDir       string
	homeDir       string
	userConfigDir string

	// persistent flags
	configFile string
	dbFlag     string
	jsonFlag   bool
	logLevel   string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	store     storage.Storage
	lock      *flock.Flock
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:     in,
		out:    out,
		errOut: errOut,
		now:    importer.SystemClock,
		logger: logging.Discard(),
	}
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	a := newApp(in, out, errOut)
	if err := a.execute(ctx, args); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) execute(ctx context.Context, args []string) error {
	defer a.close()
	root := a.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mentor",
		Short: "mentor - menu and Q&A knowledge base",
		Long: `mentor keeps a cafe's menu and Q&A entries in a local SQLite database.

Paste menu text into 'mentor parse' and every three-line group
(name, description, "150,000 Toman") becomes a menu item. A record is only
overwritten by a newer one, so re-importing old text never clobbers edits.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: .mentor/config.yaml, searched upward)")
	pf.StringVar(&a.dbFlag, "db", "", "database path (default: mentor.db)")
	pf.BoolVar(&a.jsonFlag, "json", false, "output in JSON format")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddGroup(
		&cobra.Group{ID: "records", Title: "Records:"},
		&cobra.Group{ID: "transfer", Title: "Import and export:"},
		&cobra.Group{ID: "about", Title: "About:"},
	)
	root.AddCommand(
		a.menuCmd(),
		a.qaCmd(),
		a.parseCmd(),
		a.exportCmd(),
		a.seedCmd(),
		a.infoCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads configuration and, for commands that ask for it, opens the
// store.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	opts := config.Options{
		WorkDir:       a.workDir,
		HomeDir:       a.homeDir,
		UserConfigDir: a.userConfigDir,
	}
	if a.configFile != "" {
		opts.ConfigFile = a.path(a.configFile)
	}
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Set("db", a.dbFlag)
	}
	if flags.Changed("json") {
		cfg.Set("json", a.jsonFlag)
	}
	if flags.Changed("log-level") {
		cfg.Set("log.level", a.logLevel)
	}
	a.cfg = cfg

	logFile := cfg.GetString("log.file")
	if logFile != "" {
		logFile = a.path(logFile)
	}
	logger, closer, err := logging.New(logging.Options{
		File:       logFile,
		Level:      cfg.GetString("log.level"),
		MaxSizeMB:  cfg.GetInt("log.max-size-mb"),
		MaxBackups: cfg.GetInt("log.max-backups"),
		MaxAgeDays: cfg.GetInt("log.max-age-days"),
		Stderr:     a.errOut,
	})
	if err != nil {
		return err
	}
	a.logger, a.logCloser = logger, closer

	mode := cmd.Annotations[storeAnnotation]
	if mode == "" {
		return nil
	}
	return a.openStore(cmd.Context(), mode == storeWrite)
}

func (a *app) openStore(ctx context.Context, write bool) error {
	dbPath := a.dbPath()
	if write && dbPath != sqlite.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		lock := flock.New(dbPath + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("failed to lock %s: %w", lock.Path(), err)
		}
		if !locked {
			return fmt.Errorf("database %s is in use by another mentor process (lock file %s)", dbPath, lock.Path())
		}
		a.lock = lock
	}

	loc, err := a.cfg.LegacyLocation()
	if err != nil {
		return err
	}
	store, err := sqlite.New(ctx, dbPath, sqlite.WithLegacyLocation(loc))
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	a.store = store
	a.logger.Debug("opened database", "path", dbPath, "write", write)
	return nil
}

// close releases the store, the lock and the log file. It is safe to call
// more than once.
func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
		a.store = nil
	}
	if a.lock != nil {
		if err := a.lock.Unlock(); err != nil {
			a.logger.Warn("failed to release lock", "error", err)
		}
		a.lock = nil
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// path resolves p against the app's working directory.
func (a *app) path(p string) string {
	if p == "" || p == "-" || p == sqlite.MemoryPath || filepath.IsAbs(p) || a.workDir == "" {
		return p
	}
	return filepath.Join(a.workDir, p)
}

func (a *app) dbPath() string {
	return a.path(a.cfg.DBPath())
}

func (a *app) jsonOutput() bool {
	return a.cfg != nil && a.cfg.JSON()
}

func (a *app) clock() time.Time {
	return a.now().UTC()
}

// warn prints a non-fatal message to stderr.
func (a *app) warn(format string, args ...any) {
	fmt.Fprintf(a.errOut, "%s %s\n", ui.RenderWarn(ui.Icon("⚠", "!")), fmt.Sprintf(format, args...))
}

// errNotFound formats a lookup miss, with suggestions when there are any.
func errNotFound(kind, key string, suggestions []string) error {
	err := fmt.Errorf("%s %q not found", kind, key)
	if len(suggestions) == 0 {
		return err
	}
	return fmt.Errorf("%w (did you mean %s?)", err, quoteList(suggestions))
}

func quoteList(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", s)
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
