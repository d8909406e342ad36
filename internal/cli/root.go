package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cashmonitor/internal/backend"
	"cashmonitor/internal/config"
	"cashmonitor/internal/core"
	"cashmonitor/internal/gate"
	"cashmonitor/internal/log"
	"cashmonitor/internal/storage"
)

var (
	Version   = "dev"
	CommitSHA = ""
)

var errWrongPIN = errors.New("wrong PIN")

// Options configures NewRootCommand. Zero values select the process
// defaults.
type Options struct {
	Out      io.Writer
	Err      io.Writer
	Now      func() time.Time
	Prompter Prompter
	// Config skips loading configuration from the environment.
	Config *config.Config
	// Docs replaces the configured storage backend.
	Docs storage.Store
	// LicenseKey replaces the built-in license public key (PEM).
	LicenseKey []byte
}

type runner struct {
	opts Options
	app  *App

	dataDir string
	backend string
	verbose bool
	pin     string
}

// NewRootCommand builds the cashmonitor command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Prompter == nil {
		opts.Prompter = huhPrompter{}
	}
	if opts.LicenseKey == nil {
		opts.LicenseKey = gate.DefaultPublicKeyPEM
	}
	r := &runner{opts: opts}

	root := &cobra.Command{
		Use:           "cashmonitor",
		Short:         "Monthly income and expense ledger",
		Long:          "cashmonitor keeps one ledger per calendar month, books recurring items, carries balances forward and tracks savings goals.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == cobra.ShellCompRequestCmd {
				return nil
			}
			return r.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return r.close()
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&r.dataDir, "data-dir", "", "data directory (overrides DATA_DIR)")
	pf.StringVar(&r.backend, "backend", "", "storage backend, "+backend.TypeList()+" (overrides DATA_BACKEND)")
	pf.BoolVarP(&r.verbose, "verbose", "v", false, "log debug output to stderr")
	pf.StringVar(&r.pin, "pin", "", "PIN for protected operations (prompted when omitted)")

	root.AddCommand(
		r.monthCommand(),
		r.recurringCommand(),
		r.savingsCommand(),
		r.overviewCommand(),
		r.prognosisCommand(),
		r.categoriesCommand(),
		r.exportCommand(),
		r.pinCommand(),
		r.licenseCommand(),
	)
	return root
}

// Execute runs the command tree against the process arguments.
func Execute(ctx context.Context) int {
	LoadEnvFile()
	root := NewRootCommand(Options{})
	if err := root.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err.Error())
		return 1
	}
	return 0
}

func (r *runner) open(ctx context.Context) error {
	if r.app != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := r.opts.Config
	if cfg == nil {
		cfg = config.Load()
	}
	if r.dataDir != "" {
		cfg.DataDir = r.dataDir
	}
	if r.backend != "" {
		cfg.DataBackend = r.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := log.DefaultConfig()
	logCfg.Output = r.opts.Err
	logCfg.Format = cfg.LogFormat
	logCfg.Component = log.ComponentCLI
	// Commands print their own results; only warnings reach stderr unless
	// asked otherwise.
	logCfg.Level = slog.LevelWarn
	if os.Getenv("LOG_LEVEL") != "" {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			logCfg.Level = level
		}
	}
	if r.verbose {
		logCfg.Level = slog.LevelDebug
	}
	logger := log.New(logCfg)

	app, err := OpenApp(ctx, cfg, logger, AppOptions{Now: r.opts.Now, Docs: r.opts.Docs})
	if err != nil {
		return err
	}
	r.app = app
	return nil
}

func (r *runner) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

func (r *runner) today() core.Date {
	return core.DateOf(r.opts.Now())
}

// requirePIN verifies the PIN when one is set.
func (r *runner) requirePIN(ctx context.Context) error {
	set, err := r.app.PINs.IsSet(ctx)
	if err != nil {
		return err
	}
	if !set {
		return nil
	}
	pin := r.pin
	if pin == "" {
		if pin, err = r.opts.Prompter.PIN("PIN eingeben"); err != nil {
			return err
		}
	}
	ok, err := r.app.PINs.Verify(ctx, pin)
	if err != nil {
		return err
	}
	if !ok {
		return errWrongPIN
	}
	return nil
}

// confirm asks unless --yes was given.
func (r *runner) confirm(cmd *cobra.Command, question string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	return r.opts.Prompter.Confirm(question)
}
