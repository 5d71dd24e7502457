package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"poolFeeSync/internal/chain"
	"poolFeeSync/internal/config"
	"poolFeeSync/internal/explorer"
	"poolFeeSync/internal/indexer"
	"poolFeeSync/internal/model"
	"poolFeeSync/internal/price"
	"poolFeeSync/internal/provider"
	"poolFeeSync/internal/queue"
	"poolFeeSync/internal/storage"
	"poolFeeSync/internal/storage/postgres"
)

// stateStore is what the pipeline and the API need from persistence.
type stateStore interface {
	storage.CursorStore
	storage.LedgerStore
	storage.LedgerReader
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (stateStore, func(), error) {
	if cfg.PGDSN == "" {
		logger.Warn("no pg-dsn configured, state is kept in memory")
		return storage.NewMemoryStore(), func() {}, nil
	}

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, store.Close, nil
}

func newRegistry(store storage.CursorStore) (*chain.Registry, error) {
	return chain.NewRegistry(
		chain.NewEVMHandler(store),
		chain.NewSolanaHandler(store),
	)
}

// registerPools validates every configured pool and seeds its cursor.
func registerPools(ctx context.Context, cfg config.Config, registry *chain.Registry, logger *zap.Logger) error {
	for _, pool := range cfg.Pools {
		if err := registry.ValidatePool(pool); err != nil {
			return fmt.Errorf("pool %s: %w", pool.Address, err)
		}
		handler, err := registry.Handler(pool.ChainType)
		if err != nil {
			return err
		}
		seed := cfg.SeedBlock(pool)
		if err := handler.RegisterPool(ctx, pool.Address, pool.ChainID, seed); err != nil {
			return fmt.Errorf("register pool %s: %w", pool.Address, err)
		}
		logger.Info("pool registered",
			zap.String("pool", pool.Address),
			zap.Int64("chain_id", pool.ChainID),
			zap.String("chain_type", string(pool.ChainType)),
			zap.Uint64("seed_block", seed),
		)
	}
	return nil
}

// fillContractAddresses looks up token0 for EVM pools configured without a contract address.
func fillContractAddresses(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]model.Pool, error) {
	pools := make([]model.Pool, len(cfg.Pools))
	copy(pools, cfg.Pools)

	var client *chain.Client
	defer func() {
		if client != nil {
			client.Close()
		}
	}()

	for i := range pools {
		p := &pools[i]
		if p.ChainType != model.ChainTypeEthereum || p.ContractAddress != "" {
			continue
		}
		if cfg.RPCURL == "" {
			return nil, fmt.Errorf("pool %s: contract-address is required when no rpc url is configured", p.Address)
		}
		if client == nil {
			var err error
			client, err = chain.NewClient(ctx, cfg.RPCURL)
			if err != nil {
				return nil, fmt.Errorf("connect rpc: %w", err)
			}
		}
		token0, err := chain.PoolToken0(ctx, client, p.Address)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", p.Address, err)
		}
		p.ContractAddress = token0
		logger.Info("contract address resolved", zap.String("pool", p.Address), zap.String("token0", token0))
	}
	return pools, nil
}

func providerConfig(cfg config.Config, name string) provider.Config {
	pc := provider.DefaultConfig(name)
	pc.Timeout = cfg.ProviderTimeout
	pc.FailureThreshold = cfg.BreakerThreshold
	pc.OpenTimeout = cfg.BreakerCooldown
	return pc
}

func newExplorer(cfg config.Config) *explorer.Etherscan {
	client := provider.NewClient(providerConfig(cfg, "etherscan"), &http.Client{})
	return explorer.NewEtherscan(explorer.EtherscanConfig{
		BaseURL: cfg.EtherscanURL,
		APIKey:  cfg.EtherscanAPIKey,
		ChainID: cfg.EtherscanChainID,
		PageCap: cfg.PageCap,
	}, client)
}

func newPriceClient(cfg config.Config) (price.Client, error) {
	providers := price.NewProviders()
	providers.Register(price.ProviderBinance, price.NewBinance(cfg.BinanceURL, provider.NewClient(providerConfig(cfg, "binance"), &http.Client{})))
	return providers.Get(cfg.PriceProvider)
}

// newHeadSource returns the EVM head source and a close func.
func newHeadSource(ctx context.Context, cfg config.Config, ex *explorer.Etherscan) (indexer.HeadSource, func(), error) {
	if cfg.HeadSource != config.HeadRPC {
		return ex, func() {}, nil
	}
	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}
	if err := client.CheckChainID(ctx, cfg.EtherscanChainID); err != nil {
		client.Close()
		return nil, nil, err
	}
	return client, client.Close, nil
}

func openQueues(ctx context.Context, cfg config.Config) (queue.Queue, queue.Queue, func(), error) {
	if cfg.QueueBackend == config.QueueRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		closeFn := func() { _ = client.Close() }
		return queue.NewRedis(client, cfg.QueuePrefix, queue.BlockSync),
			queue.NewRedis(client, cfg.QueuePrefix, queue.TransactionProcessing),
			closeFn, nil
	}

	blockSync := queue.NewMemory(queue.BlockSync, cfg.QueueCapacity)
	processing := queue.NewMemory(queue.TransactionProcessing, cfg.QueueCapacity)
	closeFn := func() {
		blockSync.Close()
		processing.Close()
	}
	return blockSync, processing, closeFn, nil
}

func hasChainType(pools []model.Pool, ct model.ChainType) bool {
	for _, p := range pools {
		if p.ChainType == ct {
			return true
		}
	}
	return false
}
