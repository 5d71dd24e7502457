package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "feesync",
		Short:        "Pool transaction fee synchronizer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sync pipeline",
		RunE:  runPipeline,
	}

	addCommonFlags(runCmd)
	addProviderFlags(runCmd)
	runCmd.Flags().Duration("poll-interval", 10*time.Second, "scheduler interval")
	runCmd.Flags().String("queue-backend", "memory", "queue backend (memory, redis)")
	runCmd.Flags().String("redis-addr", "localhost:6379", "Redis address for the redis queue backend")
	runCmd.Flags().Float64("jobs-per-second", 1, "jobs started per second per queue")
	runCmd.Flags().Int("max-attempts", 3, "deliveries per job before it is dropped")
	runCmd.Flags().Uint64("start-block", 0, "override the start block of every pool, 0 uses each pool's creation block")
	runCmd.Flags().String("price-provider", "binance", "price provider")
	runCmd.Flags().String("api-addr", ":8080", "query API and metrics address, empty disables")

	root.AddCommand(runCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API",
		RunE:  runServe,
	}

	addCommonFlags(serveCmd)
	addProviderFlags(serveCmd)
	serveCmd.Flags().String("api-addr", ":8080", "listen address")
	serveCmd.Flags().Duration("cache-ttl", 30*time.Second, "response cache ttl")

	root.AddCommand(serveCmd)

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register configured pools and seed their cursors",
		RunE:  runRegister,
	}

	addCommonFlags(registerCmd)
	registerCmd.Flags().Uint64("start-block", 0, "override the start block of every pool, 0 uses each pool's creation block")

	root.AddCommand(registerCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("pg-dsn", "", "Postgres DSN, empty keeps state in memory")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func addProviderFlags(cmd *cobra.Command) {
	cmd.Flags().String("etherscan-api-key", "", "Etherscan API key")
	cmd.Flags().String("head-source", "explorer", "chain head source (explorer, rpc)")
	cmd.Flags().String("rpc", "", "EVM RPC URL for the rpc head source")
	cmd.Flags().Duration("provider-timeout", 15*time.Second, "timeout per provider call")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
