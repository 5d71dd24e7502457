package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poolFeeSync/internal/api"
	"poolFeeSync/internal/config"
	"poolFeeSync/internal/explorer"
	"poolFeeSync/internal/indexer"
	"poolFeeSync/internal/metrics"
	"poolFeeSync/internal/model"
	"poolFeeSync/internal/queue"
)

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry, err := newRegistry(store)
	if err != nil {
		return err
	}
	if cfg.Pools, err = fillContractAddresses(ctx, cfg, logger); err != nil {
		return err
	}
	if err := registerPools(ctx, cfg, registry, logger); err != nil {
		return err
	}

	ex := newExplorer(cfg)
	heads, closeHeads, err := newHeadSource(ctx, cfg, ex)
	if err != nil {
		return err
	}
	defer closeHeads()

	prices, err := newPriceClient(cfg)
	if err != nil {
		return err
	}

	blockSync, processing, closeQueues, err := openQueues(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeQueues()

	if hasChainType(cfg.Pools, model.ChainTypeSolana) {
		logger.Warn("solana pools are registered but no solana explorer is configured; they will be skipped")
	}

	m := metrics.New()
	policy := indexer.RetryPolicy{
		CallTimeout: cfg.ProviderTimeout,
		MaxRetries:  cfg.MaxRetries,
		BaseDelay:   cfg.RetryBackoff,
	}
	resolver := indexer.NewResolver(
		cfg.Pools,
		registry,
		map[model.ChainType]indexer.HeadSource{model.ChainTypeEthereum: heads},
		processing,
		policy,
		m,
		logger.Named("resolver"),
	)
	enricher := indexer.NewEnricher(
		registry,
		map[model.ChainType]explorer.Client{model.ChainTypeEthereum: ex},
		prices,
		store,
		policy,
		m,
		logger.Named("enricher"),
	)
	pipeline := indexer.NewPipeline(indexer.PipelineConfig{
		PollInterval: cfg.PollInterval,
		Consumer: queue.ConsumerConfig{
			JobsPerSecond: cfg.JobsPerSecond,
			MaxAttempts:   cfg.MaxAttempts,
		},
	}, blockSync, processing, resolver, enricher, m, logger)

	logger.Info("feesync start",
		zap.Int("pools", len(cfg.Pools)),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.String("queue_backend", cfg.QueueBackend),
		zap.String("head_source", cfg.HeadSource),
		zap.String("price_provider", cfg.PriceProvider),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.String("api_addr", cfg.APIAddr),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pipeline.Run(ctx) })
	if cfg.APIAddr != "" {
		server := api.NewServer(
			api.Config{Addr: cfg.APIAddr, CacheTTL: cfg.CacheTTL},
			store,
			registry,
			cfg.Pools,
			map[model.ChainType]api.HeadSource{model.ChainTypeEthereum: heads},
			m,
			logger.Named("api"),
		)
		g.Go(func() error { return server.Run(ctx) })
	}
	return g.Wait()
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry, err := newRegistry(store)
	if err != nil {
		return err
	}

	heads, closeHeads, err := newHeadSource(ctx, cfg, newExplorer(cfg))
	if err != nil {
		return err
	}
	defer closeHeads()

	server := api.NewServer(
		api.Config{Addr: cfg.APIAddr, CacheTTL: cfg.CacheTTL},
		store,
		registry,
		cfg.Pools,
		map[model.ChainType]api.HeadSource{model.ChainTypeEthereum: heads},
		metrics.New(),
		logger.Named("api"),
	)
	return server.Run(ctx)
}

func runRegister(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.PGDSN == "" {
		logger.Warn("registering against the in-memory store has no lasting effect")
	}
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry, err := newRegistry(store)
	if err != nil {
		return err
	}
	return registerPools(ctx, cfg, registry, logger)
}
