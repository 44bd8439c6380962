package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"tasktree-cli/internal/dragintent"
	"tasktree-cli/internal/engine"
	"tasktree-cli/internal/flattree"
	"tasktree-cli/internal/format"
	"tasktree-cli/internal/store"
)

type App struct {
	Dir         string
	Driver      string
	DSN         string
	Project     string
	PrettyJSON  bool
	Format      string
	LogLevel    string
	MetricsFile string

	cfg      *store.Config
	log      *slog.Logger
	registry *prometheus.Registry
	metrics  *engine.Metrics
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "tasktree",
		Short:        "Hierarchical task lists with drag-and-drop reordering",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  tasktree

  # Scriptable commands
  tasktree tasks list --format text
  tasktree tasks nest task-abc --under task-def

  # Direct task lookup (shortcut for: tasktree tasks show <task-id>)
  tasktree task-abcdefgh
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.flushMetrics()
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr(store.EnvDir, ""), "Workspace dir (default: nearest .tasktree, else ./.tasktree)")
	cmd.PersistentFlags().StringVar(&app.Driver, "driver", envOr(store.EnvDriver, ""), "Storage driver (sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&app.DSN, "dsn", envOr(store.EnvPostgresDSN, ""), "Postgres connection string")
	cmd.PersistentFlags().StringVar(&app.Project, "project", envOr(store.EnvProject, ""), "Project id (overrides currentProject in config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKTREE_FORMAT", "json"), "Output format (json|edn|text)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("TASKTREE_LOG_LEVEL", "warn"), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.MetricsFile, "metrics-file", "", "Write a Prometheus text snapshot here after the command")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newDropCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// setup loads the config file and builds the logger and metrics registry. Flags win over
// env vars, which win over the config file.
func (app *App) setup(cmd *cobra.Command) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(app.LogLevel)); err != nil {
		return writeErr(cmd, fmt.Errorf("invalid --log-level %q", app.LogLevel))
	}
	app.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))

	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	if app.Dir == "" {
		app.Dir = cfg.Dir
	}
	if app.Driver == "" {
		app.Driver = cfg.Driver
	}
	if app.DSN == "" {
		app.DSN = cfg.PostgresDSN
	}
	if app.Project == "" {
		app.Project = cfg.CurrentProject
	}
	if app.MetricsFile == "" {
		app.MetricsFile = cfg.MetricsFile
	}

	app.registry = prometheus.NewRegistry()
	app.metrics = engine.NewMetrics(app.registry)
	return nil
}

func (app *App) flushMetrics() error {
	if app.MetricsFile == "" || app.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(app.MetricsFile, app.registry); err != nil {
		app.log.Warn("writing metrics file", "path", app.MetricsFile, "err", err)
	}
	return nil
}

func (app *App) config() *store.Config {
	if app.cfg == nil {
		return &store.Config{}
	}
	return app.cfg
}

func (app *App) logger() *slog.Logger {
	if app.log == nil {
		return slog.Default()
	}
	return app.log
}

// openStore opens the configured backend, resolving the workspace dir for SQLite.
func openStore(ctx context.Context, app *App) (*store.Store, error) {
	drv, err := store.ParseDriver(app.Driver)
	if err != nil {
		return nil, err
	}
	dir := app.Dir
	if dir == "" && drv == store.DriverSQLite {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
		app.Dir = d
	}
	return store.Open(ctx, store.Options{Driver: drv, Dir: dir, DSN: app.DSN})
}

// currentProject resolves --project / config, falling back to the only project when there is
// exactly one.
func currentProject(ctx context.Context, app *App, st *store.Store) (string, error) {
	if id := strings.TrimSpace(app.Project); id != "" {
		if _, err := st.GetProject(ctx, id); err != nil {
			return "", err
		}
		return id, nil
	}
	ps, err := st.ListProjects(ctx, false)
	if err != nil {
		return "", err
	}
	if len(ps) == 1 {
		return ps[0].ID, nil
	}
	return "", errNoProject(len(ps))
}

func newBoard(ctx context.Context, app *App, st *store.Store, projectID string) (*engine.Board, error) {
	treeOpts, dragOpts := engineOptions(app.config().Engine)
	b := newBoardWith(app, st, projectID, treeOpts, dragOpts)
	if err := b.Reload(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func newBoardWith(app *App, st *store.Store, projectID string, treeOpts flattree.Options, dragOpts dragintent.Options) *engine.Board {
	return engine.NewBoard(st, projectID,
		engine.WithLogger(app.logger()),
		engine.WithMetrics(app.metrics),
		engine.WithTreeOptions(treeOpts),
		engine.WithDragOptions(dragOpts),
	)
}

var envLookup = os.Getenv

func envOr(k, d string) string {
	if v := envLookup(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	f, err := format.Parse(app.Format)
	if err != nil {
		return writeErr(cmd, err)
	}
	return format.Write(cmd.OutOrStdout(), v, f, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
