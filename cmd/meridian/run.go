package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"skyfare/meridian/pkg/config"
	"skyfare/meridian/pkg/engine"
	"skyfare/meridian/pkg/money"
	"skyfare/meridian/pkg/refdata"
	"skyfare/meridian/pkg/server"
	"skyfare/meridian/pkg/telemetry/health"
	"skyfare/meridian/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Meridian evaluation server",
	Long: `Start the Meridian evaluation server with the specified configuration.

The server listens on the configured address and evaluates batches of
itineraries against ordered tax records.

Examples:
  # Start with default config
  meridian run

  # Start with custom config
  meridian run --config /etc/meridian/config.yaml

  # Override listen address
  meridian run --listen 0.0.0.0:8080

  # Validate config without starting server
  meridian run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, rates, cleanup, err := setupRefdata(ctx, &cfg.Refdata, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	fmt.Printf("✓ Reference data loaded (backend: %s)\n", cfg.Refdata.Backend)

	checker := health.New(0)
	registerHealthChecks(checker, &cfg.Refdata, store)

	engCfg := engine.DefaultConfig()
	if cfg.Engine.Workers > 0 {
		engCfg = engCfg.WithWorkers(cfg.Engine.Workers)
	}
	if cfg.Engine.SequentialThreshold > 0 {
		engCfg.SequentialThreshold = cfg.Engine.SequentialThreshold
	}
	engCfg = engCfg.WithTrace(cfg.Engine.Trace)

	eng, err := engine.New(engCfg, rates, store, store)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	eng = eng.WithLogger(logger)

	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		eng = eng.WithMetrics(engine.NewMetrics(registry))
	}
	fmt.Printf("✓ Engine initialized (%d workers)\n", engCfg.Workers)

	srv := server.NewServer(&cfg.Server, &cfg.Metrics, eng, logger, registry).WithHealth(checker)

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	if cfg.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}

// setupRefdata builds the reference-data store and rate source for the
// configured backend. The returned cleanup stops any watcher or
// scheduler and closes the store.
func setupRefdata(ctx context.Context, cfg *config.RefdataConfig, logger *logging.Logger) (refdata.Store, money.Service, func(), error) {
	base := money.CurrencyCode(cfg.BaseCurrency)

	switch cfg.Backend {
	case "memory":
		return refdata.NewMemoryStore(), money.NewRateTable(base), func() {}, nil

	case "sqlite":
		store, err := refdata.NewSQLiteStore(refdata.SQLiteStoreConfig{DBPath: cfg.Path})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open reference database: %w", err)
		}
		return store, refdata.BuildRateTable(store, base), func() { _ = store.Close() }, nil

	case "yaml":
		store := refdata.NewMemoryStore()
		source := refdata.NewFileSource(cfg.Path, store, logger)
		if err := source.Load(); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load reference data: %w", err)
		}

		rates := newReloadingRates(refdata.BuildRateTable(store, base))
		reload := func() error {
			if err := source.Load(); err != nil {
				return err
			}
			rates.swap(refdata.BuildRateTable(store, base))
			return nil
		}

		var cleanups []func()
		cleanup := func() {
			for _, fn := range cleanups {
				fn()
			}
		}

		if cfg.Watch {
			wcfg := refdata.DefaultFileWatcherConfig()
			wcfg.Path = cfg.Path
			watcher, err := refdata.NewFileWatcher(wcfg, logger)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("failed to create watcher: %w", err)
			}
			go func() {
				if err := watcher.Watch(ctx, reload); err != nil {
					logger.Error("reference-data watcher exited", "error", err)
				}
			}()
			cleanups = append(cleanups, func() { _ = watcher.Stop() })
		}

		if cfg.ReloadSchedule != "" {
			sched := refdata.NewReloadScheduler(reload, cfg.ReloadSchedule, logger)
			if err := sched.Start(ctx); err != nil {
				cleanup()
				return nil, nil, nil, fmt.Errorf("failed to start reload scheduler: %w", err)
			}
			cleanups = append(cleanups, sched.Stop)
		}

		return store, rates, cleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported refdata backend: %s", cfg.Backend)
	}
}

// registerHealthChecks wires backend-specific readiness checks.
func registerHealthChecks(checker *health.Checker, cfg *config.RefdataConfig, store refdata.Store) {
	switch cfg.Backend {
	case "sqlite":
		if s, ok := store.(*refdata.SQLiteStore); ok {
			checker.Register("refdata", s.Ping)
		}
	case "yaml":
		checker.Register("refdata", func(ctx context.Context) error {
			_, err := os.Stat(cfg.Path)
			return err
		})
	}
}

// reloadingRates is a money.Service whose rate table can be swapped
// atomically when reference data is reloaded. In-flight evaluations keep
// the table they started with.
type reloadingRates struct {
	table atomic.Pointer[money.RateTable]
}

func newReloadingRates(t *money.RateTable) *reloadingRates {
	r := &reloadingRates{}
	r.table.Store(t)
	return r
}

func (r *reloadingRates) swap(t *money.RateTable) {
	r.table.Store(t)
}

func (r *reloadingRates) ConvertTo(target money.CurrencyCode, m money.Money) (decimal.Decimal, error) {
	return r.table.Load().ConvertTo(target, m)
}

func (r *reloadingRates) CurrencyDecimals(currency money.CurrencyCode) uint8 {
	return r.table.Load().CurrencyDecimals(currency)
}

func (r *reloadingRates) BSR(from, to money.CurrencyCode) decimal.Decimal {
	return r.table.Load().BSR(from, to)
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Meridian v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Printf("✓ Configuration loaded (log level: %s)\n", cfg.Logging.Level)
}
