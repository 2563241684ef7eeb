package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"backtest_go/internal/domain"
	"backtest_go/pkg/quant"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config는 애플리케이션의 모든 설정을 담습니다.
// LoadConfig로 로드된 후에 .env 및 환경 변수로 덮어씁니다.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Engine struct {
		MakerFeeBps  decimal.Decimal `yaml:"maker_fee_bps"`
		TakerFeeBps  decimal.Decimal `yaml:"taker_fee_bps"`
		SpreadBps    decimal.Decimal `yaml:"spread_bps"`
		InitialCash  decimal.Decimal `yaml:"initial_cash"`
		TickSize     decimal.Decimal `yaml:"tick_size"`
		BookCapacity int             `yaml:"book_capacity"`
		FeeMode      string          `yaml:"fee_mode"`
	} `yaml:"engine"`

	Replay struct {
		RecordHistory   bool `yaml:"record_history"`
		HistoryCapacity int  `yaml:"history_capacity"`
	} `yaml:"replay"`

	Storage struct {
		Path string `yaml:"path"` // Empty means the per-user config dir.
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// DefaultConfig returns 100k cash, 1bp maker and 2bp taker fees, a 2bp spread
// and a 0.01 tick.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "backtest"
	cfg.Engine.MakerFeeBps = decimal.NewFromInt(1)
	cfg.Engine.TakerFeeBps = decimal.NewFromInt(2)
	cfg.Engine.SpreadBps = decimal.NewFromInt(2)
	cfg.Engine.InitialCash = decimal.NewFromInt(100_000)
	cfg.Engine.TickSize = decimal.New(1, -2)
	cfg.Engine.BookCapacity = domain.DefaultBookCapacity
	cfg.Engine.FeeMode = string(domain.FeeModeAlwaysTaker)
	cfg.Replay.RecordHistory = true
	cfg.Logging.Level = "info"
	return &cfg
}

// LoadConfig는 설정 파일을 읽고 파싱합니다.
// Fields missing from the file keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrConfigNotFound)
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// A .env next to the config file feeds the same overrides as the process env.
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}
	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	engineCfg := c.EngineConfig()
	if err := engineCfg.Validate(); err != nil {
		return err
	}

	if c.Replay.HistoryCapacity < 0 {
		return &domain.ConfigError{Field: "history_capacity", Err: fmt.Errorf("must not be negative, got %d", c.Replay.HistoryCapacity)}
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		return &domain.ConfigError{Field: "logging.level", Err: err}
	}

	return nil
}

// EngineConfig converts the engine section to the engine's parameter set.
func (c *Config) EngineConfig() domain.Config {
	return domain.Config{
		MakerFeeBps:  quant.Bps(c.Engine.MakerFeeBps.InexactFloat64()),
		TakerFeeBps:  quant.Bps(c.Engine.TakerFeeBps.InexactFloat64()),
		SpreadBps:    quant.Bps(c.Engine.SpreadBps.InexactFloat64()),
		InitialCash:  c.Engine.InitialCash.InexactFloat64(),
		TickSize:     c.Engine.TickSize.InexactFloat64(),
		BookCapacity: c.Engine.BookCapacity,
		FeeMode:      domain.FeeMode(strings.ToLower(c.Engine.FeeMode)),
	}
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) error {
	decimals := []struct {
		env string
		dst *decimal.Decimal
	}{
		{"BACKTEST_INITIAL_CASH", &cfg.Engine.InitialCash},
		{"BACKTEST_MAKER_FEE_BPS", &cfg.Engine.MakerFeeBps},
		{"BACKTEST_TAKER_FEE_BPS", &cfg.Engine.TakerFeeBps},
		{"BACKTEST_SPREAD_BPS", &cfg.Engine.SpreadBps},
	}
	for _, d := range decimals {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return &domain.ConfigError{Field: d.env, Err: err}
		}
		*d.dst = parsed
	}

	if level := os.Getenv("BACKTEST_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	return nil
}
