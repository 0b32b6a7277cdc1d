// Package main provides the CLI entrypoint for keymaster.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/config"
	"github.com/verte-zerg/keymaster/internal/game"
	"github.com/verte-zerg/keymaster/internal/logger"
	"github.com/verte-zerg/keymaster/internal/metrics"
	"github.com/verte-zerg/keymaster/internal/minigame"
	"github.com/verte-zerg/keymaster/internal/model"
	"github.com/verte-zerg/keymaster/internal/stats"
	"github.com/verte-zerg/keymaster/internal/statsui"
	"github.com/verte-zerg/keymaster/internal/store"
	"github.com/verte-zerg/keymaster/internal/tui"
)

const (
	defaultSlot        = "default"
	defaultPlayer      = "You"
	defaultFrameRate   = 30
	defaultAutosave    = 30
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultCurveWindow = 5
)

var (
	gameSlot      string
	gamePlayer    string
	gameFrameRate int
	gameAutosave  int
	gameSeed      int64
	logLevel      string
	logFormat     string
	metricsAddr   string

	statsKind        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	resetYes bool
)

func main() {
	config.LoadDotEnv()
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keymaster",
		Short:         "Terminal keyboard clicker game",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPlayCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&gameSlot, "slot", defaultSlot, "save slot name")
	flags.StringVar(&gamePlayer, "player", defaultPlayer, "name shown on the leaderboard")
	flags.IntVar(&gameFrameRate, "frame-rate", defaultFrameRate, "frames per second (1-240)")
	flags.IntVar(&gameAutosave, "autosave", defaultAutosave, "autosave interval in seconds")
	flags.Int64Var(&gameSeed, "seed", 0, "random seed for reaction targets (0 = time-seeded)")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", defaultLogFormat, "log format (text, json)")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on host:port")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newSlotsCmd())

	return rootCmd
}

// loadGameConfig merges the config file, environment and flags, in increasing precedence.
func loadGameConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "slot", &gameSlot, fileCfg.Game.Slot)
	applyStringConfig(cmd, "player", &gamePlayer, fileCfg.Game.Player)
	applyIntConfig(cmd, "frame-rate", &gameFrameRate, fileCfg.Game.FrameRate)
	applyIntConfig(cmd, "autosave", &gameAutosave, fileCfg.Game.Autosave)
	applyInt64Config(cmd, "seed", &gameSeed, fileCfg.Game.Seed)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	applyStringConfig(cmd, "metrics-addr", &metricsAddr, fileCfg.Metrics.Addr)

	cfg := model.Config{
		Slot:            strings.TrimSpace(gameSlot),
		Player:          strings.TrimSpace(gamePlayer),
		FrameRate:       gameFrameRate,
		AutosaveSeconds: gameAutosave,
		Seed:            gameSeed,
		LogLevel:        logLevel,
		LogFormat:       logFormat,
		MetricsAddr:     metricsAddr,
	}
	if !cmd.Flags().Changed("log-level") {
		config.ApplyEnv(&cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func cliLogger(cfg model.Config) *slog.Logger {
	return logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr)
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		return err
	}

	// The play screen owns the terminal, so logs go to a file.
	log, logCloser, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Path:   config.DefaultLogPath(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logCloser.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if cfg.MetricsAddr != "" {
		// Runs before the log file closes.
		defer startMetrics(ctx, cfg.MetricsAddr, log)()
	}

	cat := catalog.Default()
	session := game.New(cat, st, st, game.Options{
		Slot:   cfg.Slot,
		Seed:   cfg.Seed,
		Logger: log,
	})
	if _, err := session.Load(ctx); err != nil {
		return fmt.Errorf("failed to load save: %w", err)
	}

	program := tea.NewProgram(tui.NewModel(cfg, session, cat, log), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// startMetrics serves metrics in the background. The returned stop function
// shuts the server down and waits for it to return.
func startMetrics(ctx context.Context, addr string, log *slog.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := metrics.Serve(ctx, addr, log); err != nil {
			log.Error("Metrics server stopped", "error", err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress and challenge history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsKind, "kind", "", "challenge kind filter (speed, reaction)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N challenges")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window for score curves")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print text tables instead of the interactive browser")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		return err
	}
	statsCfg, err := buildStatsConfig(cfg)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	cat := catalog.Default()
	if statsPlain {
		report, err := stats.BuildReport(cmd.Context(), st, cat, statsCfg, cliLogger(cfg))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return stats.RenderReport(out, report, stats.TerminalWidth(out))
	}

	// The browser owns the terminal, so logs go to a file.
	log, logCloser, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Path:   config.DefaultLogPath(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logCloser.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	program := tea.NewProgram(statsui.NewModel(st, cat, statsCfg, log), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func buildStatsConfig(cfg model.Config) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	kind := strings.ToLower(strings.TrimSpace(statsKind))
	if kind != "" {
		if _, err := minigame.ParseKind(kind); err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --kind value: %w", err)
		}
	}
	return model.StatsConfig{
		Slot:        cfg.Slot,
		Player:      cfg.Player,
		Kind:        kind,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard with your lifetime presses ranked in",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := stats.BuildReport(cmd.Context(), st, catalog.Default(), model.StatsConfig{Slot: cfg.Slot, Player: cfg.Player}, cliLogger(cfg))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return stats.RenderLeaderboard(out, report, stats.TerminalWidth(out))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keymaster configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# slot = %q            # Save slot name
# player = %q              # Name shown on the leaderboard
# frame-rate = %d            # Frames per second (1-240)
# autosave = %d              # Autosave interval in seconds
# seed = 0                   # Reaction target seed (0 = time-seeded)

[log]
# level = %q             # debug, info, warn, error
# format = %q            # text or json

[metrics]
# addr = "127.0.0.1:9464"    # Serve Prometheus metrics while playing
`,
		defaultSlot,
		defaultPlayer,
		defaultFrameRate,
		defaultAutosave,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
