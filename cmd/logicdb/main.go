// Command logicdb is the entry point for the deductive database: a REPL,
// a one-shot query runner, a clause-file loader/validator, a JSON-over-HTTP
// server, and a terminal fact/rule browser. Grounded on
// theRebelliousNerd-codenerd's cmd/nerd/main.go root-cobra-command plus
// PersistentPreRunE zap-logger setup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"logicdb/internal/config"
	"logicdb/internal/feed/mqttfeed"
	"logicdb/internal/httpapi"
	"logicdb/internal/providers/pgfacts"
	"logicdb/internal/replsvc"
	"logicdb/internal/tui"
	"logicdb/internal/watch"
	"logicdb/pkg/engine"
)

var (
	verbose    bool
	clauseFile string
	configFile string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "logicdb",
	Short: "A Horn-clause deductive database",
	Long: `logicdb stores facts and rules and answers queries over them by
SLD resolution: unify a goal against stored facts, or against a rule's head
and recursively prove its body.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg = zap.NewDevelopmentConfig()
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

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStoreOrEmpty()
		if err != nil {
			return err
		}
		return replsvc.Repl(context.Background(), store, os.Stdin, os.Stdout, logger)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <goal>",
	Short: "Run a single query against a clause file and print its bindings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadStoreOrEmpty()
		if err != nil {
			return err
		}
		resolver := engine.NewResolver(store)
		bindings, err := engine.Query(context.Background(), resolver, args[0])
		if err != nil {
			return err
		}
		if len(bindings) == 0 {
			fmt.Println("no")
			return nil
		}
		for _, b := range bindings {
			fmt.Println(b.String())
		}
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <path>",
	Short: "Validate a clause file without querying it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		store := engine.NewStore()
		if err := store.Load(f); err != nil {
			return err
		}
		fmt.Printf("%d rule(s) loaded\n", len(store.Rules()))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON-over-HTTP query endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		store, err := loadStoreOrEmpty()
		if err != nil {
			return err
		}

		var providers []engine.StorageProvider
		if cfg.Postgres.DSN != "" {
			ctx := context.Background()
			p, err := pgfacts.Open(ctx, cfg.Postgres.DSN, cfg.Postgres.Predicate, cfg.Postgres.Table, 2)
			if err != nil {
				logger.Warn("postgres provider unavailable", zap.Error(err))
			} else {
				providers = append(providers, p)
				defer p.Close()
			}
		}
		server := httpapi.NewServer(store, logger, providers...)

		if cfg.MQTT.Broker != "" {
			feed, err := mqttfeed.Connect(cfg.MQTT.Broker, cfg.MQTT.Topic, store, server.Mutex(), logger)
			if err != nil {
				logger.Warn("mqtt feed unavailable", zap.Error(err))
			} else {
				defer feed.Close()
			}
		}

		if clauseFile != "" {
			debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
			w, err := watch.New(clauseFile, debounce, server.Swap, logger)
			if err != nil {
				logger.Warn("clause-file watcher unavailable", zap.Error(err))
			} else {
				w.Start()
				defer w.Stop()
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			logger.Info("shutting down")
			cancel()
		}()

		logger.Info("serving", zap.String("addr", cfg.Server.Addr))
		return httpapi.ListenAndServe(ctx, cfg.Server.Addr, server)
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open a read-only terminal browser over a clause file's facts and rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, predicates, err := loadStoreAndPredicates()
		if err != nil {
			return err
		}
		return tui.Browse(store, predicates, logger)
	},
}

func loadStoreOrEmpty() (*engine.Store, error) {
	store, _, err := loadStoreAndPredicates()
	return store, err
}

func loadStoreAndPredicates() (*engine.Store, []string, error) {
	store := engine.NewStore()
	if clauseFile == "" {
		return store, nil, nil
	}
	f, err := os.Open(clauseFile)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	if err := store.Load(f); err != nil {
		return nil, nil, err
	}
	return store, store.Predicates(), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&clauseFile, "file", "f", "", "Clause file to load")
	serveCmd.Flags().StringVar(&configFile, "config", "", "Path to a logicdb YAML config file")

	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(browseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
