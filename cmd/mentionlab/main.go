// Package main implements the mentionlab CLI.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mentionlab/internal/adapter"
	"mentionlab/internal/ask"
	"mentionlab/internal/browser"
	"mentionlab/internal/config"
	"mentionlab/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mentionlab",
	Short: "mentionlab - ask questions on AI chat platforms and track brand mentions",
	Long: `mentionlab drives real browser sessions against Chinese AI chat
platforms (doubao, qianwen, yiyan, deepseek, zhipu, kimi), submits
questions, and extracts the answers and citation links so mention and
adoption rates can be measured across platforms.

Sessions are captured once via an interactive login and restored for
every later question.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "mentionlab.yaml", "Path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime bundles everything a command needs once config is loaded.
type runtime struct {
	cfg   config.Config
	store *store.Store
	mgr   *browser.Manager
	orch  *ask.Orchestrator

	stopWatch func()
}

// newRuntime loads config, opens the database, and wires the browser
// manager, adapter registry, and orchestrator.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	reg := adapter.NewRegistry(logger)
	reg.ApplyTimings(cfg.ResponseTimeout(), cfg.SettleDelay())
	stopWatch := func() {}
	if cfg.SelectorOverrides != "" {
		stop, err := adapter.WatchOverrides(cfg.SelectorOverrides, reg, logger)
		if err != nil {
			logger.Warn("selector override watch unavailable", zap.Error(err))
		} else {
			stopWatch = stop
		}
	}

	mgr := browser.NewManager(cfg, logger)
	orch := ask.New(st, mgr, reg, logger)

	return &runtime{cfg: cfg, store: st, mgr: mgr, orch: orch, stopWatch: stopWatch}, nil
}

// close tears down the browser and database. Safe to call once.
func (r *runtime) close() {
	r.stopWatch()
	if err := r.mgr.CloseAll(); err != nil {
		logger.Warn("browser shutdown incomplete", zap.Error(err))
	}
	if err := r.store.Close(); err != nil {
		logger.Warn("store close failed", zap.Error(err))
	}
}

// notifyShutdown closes the runtime when the process receives SIGINT or
// SIGTERM, so a stray Chrome never outlives the CLI.
func (r *runtime) notifyShutdown(cancel func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()
}
