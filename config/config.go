package config

import (
	"fmt"
	"strings"
	"time"

	"palma-lending/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Tokens   []TokenConfig  `mapstructure:"tokens"`
	Custody  CustodyConfig  `mapstructure:"custody"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	// OpTimeout bounds each command; rate limiting and idempotency fall
	// through to degraded mode once it elapses.
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// RiskConfig carries the risk parameters as decimal strings so operators
// can write "0.8" instead of a WAD integer.
type RiskConfig struct {
	LiquidationThreshold    string `mapstructure:"liquidation_threshold"`
	MinHealthFactor         string `mapstructure:"min_health_factor"`
	CloseFactor             string `mapstructure:"close_factor"`
	LiquidationBonus        string `mapstructure:"liquidation_bonus"`
	ProtocolFee             string `mapstructure:"protocol_fee"`
	MinLiquidationRewardUSD string `mapstructure:"min_liquidation_reward_usd"`
	MinBorrowUnits          uint64 `mapstructure:"min_borrow_units"`
}

// Params converts the configured values to fixed-point risk parameters and
// validates their ranges.
func (r RiskConfig) Params() (domain.RiskParams, error) {
	var (
		p   domain.RiskParams
		err error
	)
	if p.LiquidationThreshold, err = scaled("liquidation_threshold", r.LiquidationThreshold, 18); err != nil {
		return p, err
	}
	if p.MinHealthFactor, err = scaled("min_health_factor", r.MinHealthFactor, 18); err != nil {
		return p, err
	}
	if p.CloseFactor, err = scaled("close_factor", r.CloseFactor, 18); err != nil {
		return p, err
	}
	if p.LiquidationBonus, err = scaled("liquidation_bonus", r.LiquidationBonus, 18); err != nil {
		return p, err
	}
	if p.ProtocolFee, err = scaled("protocol_fee", r.ProtocolFee, 18); err != nil {
		return p, err
	}
	if p.MinLiquidationRewardUSD, err = scaled("min_liquidation_reward_usd", r.MinLiquidationRewardUSD, 8); err != nil {
		return p, err
	}
	p.MinBorrowUnits = uint256.NewInt(r.MinBorrowUnits)

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// scaled parses a non-negative decimal string and shifts it to an integer
// with the given number of fractional digits.
func scaled(key, s string, digits int32) (*uint256.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("risk.%s: %w", key, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("risk.%s: must not be negative", key)
	}
	shifted := d.Shift(digits)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("risk.%s: more than %d fractional digits", key, digits)
	}
	v, err := uint256.FromDecimal(shifted.Truncate(0).String())
	if err != nil {
		return nil, fmt.Errorf("risk.%s: %w", key, err)
	}
	return v, nil
}

// PoolConfig identifies the custody address holding pooled funds.
type PoolConfig struct {
	Address string `mapstructure:"address"`
}

// Account returns the pool address.
func (p PoolConfig) Account() domain.Account {
	return common.HexToAddress(p.Address)
}

// KafkaConfig configures the event stream. Empty Brokers disables publishing.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Enabled reports whether at least one broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// TokenConfig describes one token known to the registry.
type TokenConfig struct {
	Address      string `mapstructure:"address"`
	Symbol       string `mapstructure:"symbol"`
	Decimals     uint8  `mapstructure:"decimals"`
	Allowed      bool   `mapstructure:"allowed"`
	FeedDecimals uint8  `mapstructure:"feed_decimals"`
	// InitialPrice, when set, seeds the oracle round store at startup (dev only).
	InitialPrice string `mapstructure:"initial_price"`
}

// Asset returns the token address.
func (t TokenConfig) Asset() domain.Asset {
	return common.HexToAddress(t.Address)
}

// CustodyConfig configures the in-process token vault.
type CustodyConfig struct {
	Genesis []GenesisBalance `mapstructure:"genesis"`
}

// GenesisBalance credits an account with a token balance at startup.
type GenesisBalance struct {
	Account string `mapstructure:"account"`
	Asset   string `mapstructure:"asset"`
	Amount  string `mapstructure:"amount"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: PLM_ (Palma Lending).
// Nested keys use underscore: PLM_DATABASE_HOST, PLM_RISK_CLOSE_FACTOR, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "palma_lending")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.op_timeout", "500ms")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "palma-lending")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("risk.liquidation_threshold", "0.8")
	v.SetDefault("risk.min_health_factor", "1.1")
	v.SetDefault("risk.close_factor", "0.5")
	v.SetDefault("risk.liquidation_bonus", "0.1")
	v.SetDefault("risk.protocol_fee", "0.05")
	v.SetDefault("risk.min_liquidation_reward_usd", "50")
	v.SetDefault("risk.min_borrow_units", 1)
	v.SetDefault("pool.address", "0x000000000000000000000000000000000000b0b0")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "palma.ledger.events")

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: PLM_DATABASE_HOST -> database.host
	v.SetEnvPrefix("PLM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	for i, t := range cfg.Tokens {
		if !common.IsHexAddress(t.Address) {
			return nil, fmt.Errorf("tokens[%d]: invalid address %q", i, t.Address)
		}
	}
	if !common.IsHexAddress(cfg.Pool.Address) {
		return nil, fmt.Errorf("pool.address: invalid address %q", cfg.Pool.Address)
	}

	return &cfg, nil
}
