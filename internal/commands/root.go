package commands

import (
	"log/slog"
	"os"
	osuser "os/user"

	"github.com/spf13/cobra"

	"github.com/Taiyaki256/discord-kintai/internal/config"
	"github.com/Taiyaki256/discord-kintai/internal/correction"
	"github.com/Taiyaki256/discord-kintai/internal/db"
	"github.com/Taiyaki256/discord-kintai/internal/ledger"
	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
	"github.com/Taiyaki256/discord-kintai/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "kintai",
	Short: "A work attendance tracker",
	Long: `kintai records when you start and stop work, lets you correct
mistakes after the fact, and produces daily, weekly and monthly reports.`,
}

// app bundles everything a command needs: config, the open store, the
// resolved user, and the domain services.
type app struct {
	cfg       config.Config
	store     *db.Store
	user      models.User
	clock     timeutil.Clock
	svc       *ledger.Service
	mgr       *correction.Manager
	presenter *tui.TerminalPresenter
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	store, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	externalID, username := identity()
	user, err := store.CreateOrGetUser(externalID, username)
	if err != nil {
		store.Close()
		return nil, err
	}

	clock := timeutil.SystemClock{}
	svc := ledger.NewService(store, clock)
	mgr := correction.NewManager(svc, clock)
	mgr.SetTTL(cfg.FlowTTL)
	return &app{
		cfg:       cfg,
		store:     store,
		user:      user,
		clock:     clock,
		svc:       svc,
		mgr:       mgr,
		presenter: &tui.TerminalPresenter{Out: os.Stdout},
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}

// identity resolves who is using the CLI: KINTAI_USER wins, then the OS login.
func identity() (externalID, username string) {
	if u := os.Getenv("KINTAI_USER"); u != "" {
		return u, u
	}
	if u, err := osuser.Current(); err == nil {
		return u.Username, u.Username
	}
	return "local", "local"
}

// withApp wraps a command function so the app is set up and torn down around it.
func withApp(fn func(a *app, cmd *cobra.Command, args []string)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			return
		}
		defer a.Close()
		fn(a, cmd, args)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("kintai %s (commit %s, built %s)\n", version, commit, date)
	},
}

// Execute runs the root command with the build information stamped in by the
// linker.
func Execute(v, c, d string) error {
	version, commit, date = v, c, d
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}
