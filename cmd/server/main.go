package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/VitaminP8/gqlapi/graph"
	"github.com/VitaminP8/gqlapi/internal/config"
	"github.com/VitaminP8/gqlapi/internal/logger"
	"github.com/VitaminP8/gqlapi/internal/metrics"
	"github.com/VitaminP8/gqlapi/internal/server"
	"github.com/VitaminP8/gqlapi/internal/subscription"
)

func main() {
	if err := newRootCmd(run).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command; runFn receives the validated configuration.
func newRootCmd(runFn func(context.Context, *config.Config) error) *cobra.Command {
	v := config.NewViper()
	var envFile string

	cmd := &cobra.Command{
		Use:           "gqlapi",
		Short:         "GraphQL API for users and their posts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env only fills variables that are not set yet.
			if err := config.LoadEnv(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return errors.Wrapf(err, "could not load %s", envFile)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runFn(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the configuration")
	flags.String("addr", ":8000", "address to listen on")
	flags.String("storage", config.StorageSQLite, "storage backend: sqlite, postgres or memory")
	flags.String("sqlite-path", "./test.db", "sqlite database file")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.Bool("log-dev", false, "human readable development logging")
	flags.Bool("log-sql", false, "log every SQL statement at debug level")
	flags.Duration("count-interval", graph.DefaultCountInterval, "delay between two values of the count subscription")
	flags.Duration("shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")

	bindFlags(v, flags, map[string]string{
		"addr":             "addr",
		"storage":          "storage",
		"sqlite-path":      "sqlite.path",
		"log-level":        "log.level",
		"log-dev":          "log.dev",
		"log-sql":          "log.sql",
		"count-interval":   "count.interval",
		"shutdown-timeout": "shutdown.timeout",
	})

	return cmd
}

// bindFlags makes an explicitly set flag win over the environment.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	stores, err := openStorage(cfg, log)
	if err != nil {
		log.Error("failed to open storage", zap.Error(err))
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("failed to close storage", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	resolver := &graph.Resolver{
		UserStore:           stores.Users,
		PostStore:           stores.Posts,
		SubscriptionManager: subscription.NewSubscriptionManager(),
		Metrics:             m,
		CountInterval:       cfg.Count.Interval,
	}

	schema, err := graph.NewSchema(resolver, log)
	if err != nil {
		return err
	}

	handler := server.NewHandler(server.Options{
		Schema:   schema,
		Logger:   log,
		Metrics:  m,
		Gatherer: reg,
	})

	if err := server.Run(ctx, cfg.Addr, handler, cfg.Shutdown.Timeout, log); err != nil {
		log.Error("server failed", zap.Error(err))
		return err
	}
	return nil
}
