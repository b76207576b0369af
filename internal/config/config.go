package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	CoinGeckoURL      string `validate:"required,url"`
	CoinGeckoAPIKey   string
	BinanceSpotURL    string `validate:"required,url"`
	BinanceFuturesURL string `validate:"required,url"`
	NewsAPIURL        string `validate:"required,url"`
	NewsAPIKey        string
	OpenAIAPIKey      string
	OpenAIModel       string `validate:"required"`
	TelegramBotToken  string
	TelegramChatIDs   []int64
	SendReport        bool

	TopN           int           `validate:"min=1,max=250"`
	Workers        int           `validate:"min=1,max=32"`
	RequestTimeout time.Duration `validate:"gt=0"`
	RunTimeout     time.Duration `validate:"gt=0"`
	RequestsPerSec int           `validate:"min=1"`
	MaxRetries     int           `validate:"min=0,max=10"`

	VsCurrency       string        `validate:"required"`
	CandleMinPeriods int           `validate:"min=1"`
	OrderBookDepth   int           `validate:"min=1,max=5000"`
	TradeLimit       int           `validate:"min=1,max=1000"`
	NewsLimit        int           `validate:"min=1,max=100"`
	VolatilityWindow time.Duration `validate:"gt=0"`

	SMAPeriod        int     `validate:"min=1"`
	RSIPeriod        int     `validate:"min=1"`
	BBPeriod         int     `validate:"min=1"`
	BBStdDev         float64 `validate:"gt=0"`
	MACDFastPeriod   int     `validate:"min=1"`
	MACDSlowPeriod   int     `validate:"min=1,gtfield=MACDFastPeriod"`
	MACDSignalPeriod int     `validate:"min=1"`
	RSIOversold      float64 `validate:"gte=0,lte=100"`
	RSIOverbought    float64 `validate:"gte=0,lte=100,gtfield=RSIOversold"`

	LogLevel    string `validate:"oneof=trace debug info warn error"`
	LogFormat   string `validate:"oneof=console json"`
	LogFile     string
	MetricsAddr string
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.CoinGeckoURL = getEnvWithDefault("COINGECKO_API_URL", "https://api.coingecko.com/api/v3")
	cfg.CoinGeckoAPIKey = os.Getenv("COINGECKO_API_KEY")
	cfg.BinanceSpotURL = getEnvWithDefault("BINANCE_SPOT_URL", "https://api.binance.com/api/v3")
	cfg.BinanceFuturesURL = getEnvWithDefault("BINANCE_FUTURES_URL", "https://fapi.binance.com/fapi/v1")
	cfg.NewsAPIURL = getEnvWithDefault("NEWS_API_URL", "https://newsapi.org/v2")
	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini")
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	chatIDs, err := parseChatIDs(os.Getenv("TELEGRAM_CHAT_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.TelegramChatIDs = chatIDs
	cfg.SendReport = getEnvBoolWithDefault("SEND_REPORT", true)

	cfg.TopN = getEnvIntWithDefault("TOP_N", 3)
	cfg.Workers = getEnvIntWithDefault("WORKERS", 4)
	cfg.RequestTimeout = getEnvDurationWithDefault("REQUEST_TIMEOUT", 10*time.Second)
	cfg.RunTimeout = getEnvDurationWithDefault("RUN_TIMEOUT", 2*time.Minute)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", 2)

	cfg.VsCurrency = getEnvWithDefault("VS_CURRENCY", "usd")
	cfg.CandleMinPeriods = getEnvIntWithDefault("CANDLE_MIN_PERIODS", 60)
	cfg.OrderBookDepth = getEnvIntWithDefault("ORDER_BOOK_DEPTH", 100)
	cfg.TradeLimit = getEnvIntWithDefault("TRADE_LIMIT", 200)
	cfg.NewsLimit = getEnvIntWithDefault("NEWS_LIMIT", 5)
	cfg.VolatilityWindow = getEnvDurationWithDefault("VOLATILITY_WINDOW", 5*time.Minute)

	cfg.SMAPeriod = getEnvIntWithDefault("SMA_PERIOD", 20)
	cfg.RSIPeriod = getEnvIntWithDefault("RSI_PERIOD", 14)
	cfg.BBPeriod = getEnvIntWithDefault("BB_PERIOD", 20)
	cfg.BBStdDev = getEnvFloatWithDefault("BB_STD_DEV", 2)
	cfg.MACDFastPeriod = getEnvIntWithDefault("MACD_FAST_PERIOD", 12)
	cfg.MACDSlowPeriod = getEnvIntWithDefault("MACD_SLOW_PERIOD", 26)
	cfg.MACDSignalPeriod = getEnvIntWithDefault("MACD_SIGNAL_PERIOD", 9)
	cfg.RSIOversold = getEnvFloatWithDefault("RSI_OVERSOLD", 30)
	cfg.RSIOverbought = getEnvFloatWithDefault("RSI_OVERBOUGHT", 70)

	cfg.LogLevel = strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(getEnvWithDefault("LOG_FORMAT", "console"))
	cfg.LogFile = os.Getenv("LOG_FILE")
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func parseChatIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_IDS: bad chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDurationWithDefault accepts Go durations ("30s") or bare seconds ("30").
func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
