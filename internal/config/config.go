// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fd1az/crossarb/internal/symbol"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig        `mapstructure:"app"`
	Exchanges []ExchangeConfig `mapstructure:"exchanges"`
	Symbols   []SymbolConfig   `mapstructure:"symbols"`
	Trading   TradingConfig    `mapstructure:"trading"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ExchangeConfig holds connection settings for one exchange.
type ExchangeConfig struct {
	ID                string  `mapstructure:"id"`
	BaseURL           string  `mapstructure:"base_url"`
	WebSocketURL      string  `mapstructure:"websocket_url"` // optional streaming ticker feed
	TakerFeeRate      float64 `mapstructure:"taker_fee_rate"`
	APIKeyEnv         string  `mapstructure:"api_key_env"`    // env var holding the API key
	APISecretEnv      string  `mapstructure:"api_secret_env"` // env var holding the API secret
	RequestsPerMinute int     `mapstructure:"requests_per_minute"`
}

// TakerFeeRateDecimal returns the taker fee rate as decimal.Decimal.
func (c *ExchangeConfig) TakerFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TakerFeeRate)
}

// SymbolConfig holds one configured trading pair and its order size.
type SymbolConfig struct {
	Pair      string  `mapstructure:"pair"`
	OrderSize float64 `mapstructure:"order_size"`
}

// TradingConfig holds arbitrage engine settings.
type TradingConfig struct {
	PaperTrading        bool          `mapstructure:"paper_trading"`
	WithdrawFee         float64       `mapstructure:"withdraw_fee"`
	PostProcessing      bool          `mapstructure:"post_processing"`
	SlippageTolerance   float64       `mapstructure:"slippage_tolerance"` // percent
	ProfitUnit          string        `mapstructure:"profit_unit"`
	ProfitThreshold     float64       `mapstructure:"profit_threshold"` // percent
	LossThreshold       float64       `mapstructure:"loss_threshold"`   // percent
	CycleInterval       time.Duration `mapstructure:"cycle_interval"`
	FetchTimeout        time.Duration `mapstructure:"fetch_timeout"`
	TransferDeadline    time.Duration `mapstructure:"transfer_deadline"`
	TransferPollInitial time.Duration `mapstructure:"transfer_poll_initial"`
	TransferPollMax     time.Duration `mapstructure:"transfer_poll_max"`
}

// WithdrawFeeDecimal returns the withdrawal fee as decimal.Decimal.
func (c *TradingConfig) WithdrawFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.WithdrawFee)
}

// SlippageToleranceDecimal returns the slippage tolerance as decimal.Decimal.
func (c *TradingConfig) SlippageToleranceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.SlippageTolerance)
}

// ProfitThresholdDecimal returns the profit threshold as decimal.Decimal.
func (c *TradingConfig) ProfitThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.ProfitThreshold)
}

// LossThresholdDecimal returns the loss threshold as decimal.Decimal.
func (c *TradingConfig) LossThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.LossThreshold)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// SymbolTable builds the immutable symbol table from the configured symbols.
func (c *Config) SymbolTable() (*symbol.Table, error) {
	entries := make([]symbol.Entry, 0, len(c.Symbols))
	for _, s := range c.Symbols {
		entries = append(entries, symbol.Entry{
			Symbol:    symbol.Symbol(s.Pair),
			OrderSize: decimal.NewFromFloat(s.OrderSize),
		})
	}
	return symbol.NewTable(entries)
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("CROSSARB")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "CROSSARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "CROSSARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "CROSSARB_LOG_LEVEL", "LOG_LEVEL")

	// Trading
	v.BindEnv("trading.paper_trading", "CROSSARB_PAPER_TRADING")
	v.BindEnv("trading.withdraw_fee", "CROSSARB_WITHDRAW_FEE")
	v.BindEnv("trading.post_processing", "CROSSARB_POST_PROCESSING")
	v.BindEnv("trading.slippage_tolerance", "CROSSARB_SLIPPAGE_TOLERANCE")
	v.BindEnv("trading.profit_unit", "CROSSARB_PROFIT_UNIT")
	v.BindEnv("trading.profit_threshold", "CROSSARB_PROFIT_THRESHOLD")
	v.BindEnv("trading.loss_threshold", "CROSSARB_LOSS_THRESHOLD")
	v.BindEnv("trading.cycle_interval", "CROSSARB_CYCLE_INTERVAL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "CROSSARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "CROSSARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "CROSSARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "crossarb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Exchange defaults: the spot venues the bot watches out of the box.
	v.SetDefault("exchanges", []map[string]any{
		{"id": "okx", "base_url": "https://www.okx.com", "taker_fee_rate": 0.001, "requests_per_minute": 600},
		{"id": "bybit", "base_url": "https://api.bybit.com", "taker_fee_rate": 0.001, "requests_per_minute": 600},
		{"id": "binance", "base_url": "https://api.binance.com", "taker_fee_rate": 0.001, "requests_per_minute": 1200},
		{"id": "kucoin", "base_url": "https://api.kucoin.com", "taker_fee_rate": 0.001, "requests_per_minute": 600},
		{"id": "bitmart", "base_url": "https://api-cloud.bitmart.com", "taker_fee_rate": 0.0025, "requests_per_minute": 300},
		{"id": "gate", "base_url": "https://api.gateio.ws", "taker_fee_rate": 0.002, "requests_per_minute": 600},
	})

	// Symbol defaults with per-pair order sizes (base denominated)
	v.SetDefault("symbols", []map[string]any{
		{"pair": "BTC/USDT", "order_size": 0.001},
		{"pair": "LTC/USDT", "order_size": 0.01},
		{"pair": "DOGE/USDT", "order_size": 100},
		{"pair": "SHIB/USDT", "order_size": 1000000},
		{"pair": "SOL/USDT", "order_size": 0.1},
		{"pair": "ETH/USDT", "order_size": 0.01},
		{"pair": "ADA/USDT", "order_size": 1},
		{"pair": "DOT/USDT", "order_size": 0.1},
		{"pair": "UNI/USDT", "order_size": 0.1},
		{"pair": "LINK/USDT", "order_size": 0.1},
	})

	// Trading defaults
	v.SetDefault("trading.paper_trading", true)
	v.SetDefault("trading.withdraw_fee", 0)
	v.SetDefault("trading.post_processing", false)
	v.SetDefault("trading.slippage_tolerance", 0.5)
	v.SetDefault("trading.profit_unit", "USDT")
	v.SetDefault("trading.profit_threshold", 50)
	v.SetDefault("trading.loss_threshold", 10)
	v.SetDefault("trading.cycle_interval", "5s")
	v.SetDefault("trading.fetch_timeout", "10s")
	v.SetDefault("trading.transfer_deadline", "30m")
	v.SetDefault("trading.transfer_poll_initial", "2s")
	v.SetDefault("trading.transfer_poll_max", "30s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "crossarb")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Exchanges) == 0 {
		return fmt.Errorf("exchanges cannot be empty")
	}
	seen := make(map[string]struct{}, len(c.Exchanges))
	for _, ex := range c.Exchanges {
		if ex.ID == "" {
			return fmt.Errorf("exchange id is required")
		}
		if _, dup := seen[ex.ID]; dup {
			return fmt.Errorf("exchange %q configured twice", ex.ID)
		}
		seen[ex.ID] = struct{}{}
		if ex.BaseURL == "" {
			return fmt.Errorf("exchange %q: base_url is required", ex.ID)
		}
		if ex.TakerFeeRate < 0 || ex.TakerFeeRate >= 1 {
			return fmt.Errorf("exchange %q: taker_fee_rate must be in [0,1), got %v", ex.ID, ex.TakerFeeRate)
		}
	}

	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols cannot be empty")
	}
	if _, err := c.SymbolTable(); err != nil {
		return err
	}

	if c.Trading.SlippageTolerance < 0 {
		return fmt.Errorf("trading.slippage_tolerance cannot be negative")
	}
	if c.Trading.WithdrawFee < 0 {
		return fmt.Errorf("trading.withdraw_fee cannot be negative")
	}
	if c.Trading.LossThreshold < 0 {
		return fmt.Errorf("trading.loss_threshold cannot be negative")
	}
	if c.Trading.ProfitUnit == "" {
		return fmt.Errorf("trading.profit_unit is required")
	}
	if c.Trading.CycleInterval <= 0 {
		return fmt.Errorf("trading.cycle_interval must be positive")
	}
	if c.Trading.TransferDeadline <= 0 {
		return fmt.Errorf("trading.transfer_deadline must be positive")
	}
	return nil
}
