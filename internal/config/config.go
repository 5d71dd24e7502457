package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"poolFeeSync/internal/model"
)

// Queue backends.
const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
)

// Head sources.
const (
	HeadExplorer = "explorer"
	HeadRPC      = "rpc"
)

// DefaultPriceSymbol is used for pools that do not name one.
const DefaultPriceSymbol = "ETHUSDT"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	LogLevel string
	PGDSN    string

	Pools      []model.Pool
	StartBlock uint64
	// StartBlockSet reports whether StartBlock overrides each pool's creation block.
	StartBlockSet bool

	PollInterval  time.Duration
	QueueBackend  string
	QueuePrefix   string
	QueueCapacity int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JobsPerSecond float64
	MaxAttempts   int

	ProviderTimeout  time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	BreakerThreshold uint32
	BreakerCooldown  time.Duration

	HeadSource       string
	RPCURL           string
	EtherscanURL     string
	EtherscanAPIKey  string
	EtherscanChainID int64
	PageCap          int

	PriceProvider string
	BinanceURL    string

	APIAddr  string
	CacheTTL time.Duration
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FEESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("poll-interval", 10*time.Second)
	v.SetDefault("queue-backend", QueueMemory)
	v.SetDefault("queue-prefix", "feesync:queue:")
	v.SetDefault("queue-capacity", 1024)
	v.SetDefault("redis-addr", "localhost:6379")
	v.SetDefault("redis-db", 0)
	v.SetDefault("jobs-per-second", 1.0)
	v.SetDefault("max-attempts", 3)
	v.SetDefault("provider-timeout", 15*time.Second)
	v.SetDefault("max-retries", 2)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("breaker-threshold", 5)
	v.SetDefault("breaker-cooldown", 30*time.Second)
	v.SetDefault("head-source", HeadExplorer)
	v.SetDefault("etherscan-url", "https://api.etherscan.io/api")
	v.SetDefault("etherscan-chain-id", 1)
	v.SetDefault("page-cap", 10000)
	v.SetDefault("price-provider", "binance")
	v.SetDefault("binance-url", "https://api.binance.com")
	v.SetDefault("api-addr", ":8080")
	v.SetDefault("cache-ttl", 30*time.Second)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	pools, err := loadPools(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		LogLevel:         v.GetString("log-level"),
		PGDSN:            v.GetString("pg-dsn"),
		Pools:            pools,
		StartBlock:       v.GetUint64("start-block"),
		StartBlockSet:    v.IsSet("start-block") && v.GetUint64("start-block") > 0,
		PollInterval:     v.GetDuration("poll-interval"),
		QueueBackend:     strings.ToLower(v.GetString("queue-backend")),
		QueuePrefix:      v.GetString("queue-prefix"),
		QueueCapacity:    v.GetInt("queue-capacity"),
		RedisAddr:        v.GetString("redis-addr"),
		RedisPassword:    v.GetString("redis-password"),
		RedisDB:          v.GetInt("redis-db"),
		JobsPerSecond:    v.GetFloat64("jobs-per-second"),
		MaxAttempts:      v.GetInt("max-attempts"),
		ProviderTimeout:  v.GetDuration("provider-timeout"),
		MaxRetries:       v.GetInt("max-retries"),
		RetryBackoff:     v.GetDuration("retry-backoff"),
		BreakerThreshold: v.GetUint32("breaker-threshold"),
		BreakerCooldown:  v.GetDuration("breaker-cooldown"),
		HeadSource:       strings.ToLower(v.GetString("head-source")),
		RPCURL:           v.GetString("rpc"),
		EtherscanURL:     v.GetString("etherscan-url"),
		EtherscanAPIKey:  v.GetString("etherscan-api-key"),
		EtherscanChainID: v.GetInt64("etherscan-chain-id"),
		PageCap:          v.GetInt("page-cap"),
		PriceProvider:    strings.ToLower(v.GetString("price-provider")),
		BinanceURL:       v.GetString("binance-url"),
		APIAddr:          v.GetString("api-addr"),
		CacheTTL:         v.GetDuration("cache-ttl"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.QueueBackend {
	case QueueMemory, QueueRedis:
	default:
		return fmt.Errorf("unknown queue backend %q", c.QueueBackend)
	}
	switch c.HeadSource {
	case HeadExplorer:
	case HeadRPC:
		if c.RPCURL == "" {
			return fmt.Errorf("rpc url is required when head source is rpc")
		}
	default:
		return fmt.Errorf("unknown head source %q", c.HeadSource)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be greater than zero")
	}
	return nil
}

// SeedBlock returns the block a pool cursor starts from on registration.
func (c Config) SeedBlock(pool model.Pool) uint64 {
	if c.StartBlockSet {
		return c.StartBlock
	}
	return pool.CreatedBlock
}

// DefaultPools is the pool list used when the config file names none.
func DefaultPools() []model.Pool {
	return []model.Pool{{
		Address:         "0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640",
		ChainID:         1,
		ChainType:       model.ChainTypeEthereum,
		ContractAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		PriceSymbol:     DefaultPriceSymbol,
		CreatedBlock:    21202122,
		Description:     "USDC/WETH 0.05% Uniswap V3",
	}}
}

func loadPools(v *viper.Viper) ([]model.Pool, error) {
	if !v.IsSet("pools") {
		return DefaultPools(), nil
	}

	var pools []model.Pool
	if err := v.UnmarshalKey("pools", &pools); err != nil {
		return nil, fmt.Errorf("decode pools: %w", err)
	}

	for i := range pools {
		p := &pools[i]
		p.Address = strings.TrimSpace(p.Address)
		p.ContractAddress = strings.TrimSpace(p.ContractAddress)
		if p.Address == "" {
			return nil, fmt.Errorf("pool %d: address is required", i)
		}
		if p.ChainID <= 0 {
			return nil, fmt.Errorf("pool %s: chain-id must be positive", p.Address)
		}
		if p.ChainType == "" {
			p.ChainType = model.ChainTypeEthereum
		}
		p.ChainType = model.ChainType(strings.ToLower(string(p.ChainType)))
		if p.PriceSymbol == "" {
			p.PriceSymbol = DefaultPriceSymbol
		}
		p.PriceSymbol = strings.ToUpper(p.PriceSymbol)
	}
	return pools, nil
}
