// Package cli wires the components into the ccbar command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ccbar/ccbar/internal/cache"
	"github.com/ccbar/ccbar/internal/config"
	"github.com/ccbar/ccbar/internal/credentials"
	"github.com/ccbar/ccbar/internal/history"
	"github.com/ccbar/ccbar/internal/logscan"
	"github.com/ccbar/ccbar/internal/menu"
	"github.com/ccbar/ccbar/internal/metrics"
	"github.com/ccbar/ccbar/internal/model"
	"github.com/ccbar/ccbar/internal/plan"
	"github.com/ccbar/ccbar/internal/remote"
	"github.com/ccbar/ccbar/internal/source"
)

// NewRootCmd builds the command tree. The bare command renders the menu;
// set and toggle mutate persisted settings.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "ccbar",
		Short:         "Claude Code usage for the menu bar",
		Long:          "ccbar estimates Claude Code quota usage and prints it in the menu line protocol consumed by SwiftBar-style hosts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, configPath)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.ccbar.yaml)")

	root.AddCommand(newSetCmd(&configPath))
	root.AddCommand(newToggleCmd(&configPath))

	return root
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultPath()
}

// newLogger builds a stderr-only console logger. Stdout carries the menu
// protocol and must stay clean.
func newLogger(debug bool) *zap.Logger {
	level := zapcore.WarnLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

func runRender(cmd *cobra.Command, configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	log := newLogger(cfg.Debug)
	defer log.Sync()

	now := time.Now()

	result, session, week := resolve(cmd.Context(), cfg, log, now)

	recordHistory(cfg, log, &result, now)

	data := menu.Data{
		Result:  result,
		Session: session,
		Week:    week,
		History: loadHistory(cfg),
		Thresholds: metrics.Thresholds{
			GreenMax:  cfg.Thresholds.GreenMax,
			YellowMax: cfg.Thresholds.YellowMax,
			OrangeMax: cfg.Thresholds.OrangeMax,
		},
		Gradient: cfg.Gradient,
		Now:      now,
	}

	fmt.Fprint(cmd.OutOrStdout(), menu.Render(data, menu.ParseStyle(cfg.Style)))
	return nil
}

// resolve produces the snapshot for this invocation in the configured mode.
func resolve(ctx context.Context, cfg *config.Config, log *zap.Logger, now time.Time) (source.Result, model.UsageWindow, model.UsageWindow) {
	if cfg.Mode == "local" {
		return resolveLocal(cfg, log, now)
	}

	cachePath, err := cache.DefaultPath()
	if err != nil {
		log.Warn("no home directory; cache disabled", zap.Error(err))
	}

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Timeout())
	client.MaxAttempts = cfg.Remote.MaxAttempts
	client.BaseDelay = cfg.BaseDelay()

	resolver := &source.Resolver{
		Creds:  credentials.OSSource{},
		Client: client,
		Cache:  &cache.Store{Path: cachePath, TTL: cfg.CacheTTL()},
		Log:    log,
	}

	result := resolver.ResolveRemote(ctx, now)
	return result, model.UsageWindow{}, model.UsageWindow{}
}

func resolveLocal(cfg *config.Config, log *zap.Logger, now time.Time) (source.Result, model.UsageWindow, model.UsageWindow) {
	root := cfg.Logs.Root
	if root == "" {
		root = logscan.DefaultRoot()
	}

	planName := cfg.Plan.Name
	if planName == "" {
		if creds, err := (credentials.OSSource{}).Credentials(); err == nil {
			planName = creds.RateLimitTier
		}
	}
	limits := plan.Lookup(planName)
	if cfg.Plan.SessionPrompts > 0 {
		limits.SessionPrompts = cfg.Plan.SessionPrompts
	}
	for tier, ceiling := range cfg.Plan.WeeklyTokens {
		limits.WeeklyTokens[model.Tier(tier)] = ceiling
	}

	log.Debug("aggregating local corpus", zap.String("root", root), zap.String("plan", planName))

	result, session, week := source.ResolveLocal(
		&logscan.Scanner{Root: root},
		limits,
		time.Weekday(cfg.Plan.WeeklyResetDay),
		now,
	)
	result.PlanName = planName
	return result, session, week
}

// recordHistory appends this invocation's percentages to the history.
func recordHistory(cfg *config.Config, log *zap.Logger, result *source.Result, now time.Time) {
	if result.Origin == source.OriginFailed {
		return
	}

	path, err := history.DefaultPath()
	if err != nil {
		return
	}

	store := &history.Store{
		Path:        path,
		MaxSamples:  cfg.History.MaxSamples,
		MinInterval: cfg.MinSampleInterval(),
	}
	stored := store.Record(now, result.Snapshot.Short.Utilization, result.Snapshot.Long.Utilization)
	log.Debug("history sample", zap.Bool("stored", stored))
}

func loadHistory(cfg *config.Config) []model.HistorySample {
	path, err := history.DefaultPath()
	if err != nil {
		return nil
	}
	store := &history.Store{
		Path:        path,
		MaxSamples:  cfg.History.MaxSamples,
		MinInterval: cfg.MinSampleInterval(),
	}
	return store.Load()
}
