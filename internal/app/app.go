package app

import (
	"github.com/Alias1177/CoinSignal/internal/analysis/technical"
	"github.com/Alias1177/CoinSignal/internal/analyze"
	"github.com/Alias1177/CoinSignal/internal/api/binance"
	"github.com/Alias1177/CoinSignal/internal/api/coingecko"
	"github.com/Alias1177/CoinSignal/internal/api/newsapi"
	"github.com/Alias1177/CoinSignal/internal/api/openai"
	"github.com/Alias1177/CoinSignal/internal/assets"
	"github.com/Alias1177/CoinSignal/internal/calculate"
	"github.com/Alias1177/CoinSignal/internal/config"
	"github.com/Alias1177/CoinSignal/internal/marketdata"
	"github.com/Alias1177/CoinSignal/internal/metrics"
	httpClient "github.com/Alias1177/CoinSignal/internal/platform/http"
	"github.com/Alias1177/CoinSignal/internal/sentiment"
	"github.com/Alias1177/CoinSignal/internal/strategy"
	"github.com/rs/zerolog/log"
)

// App is the wired pipeline shared by the runner and the bot.
type App struct {
	Config       *config.Config
	Metrics      *metrics.Recorder
	Orchestrator *strategy.Orchestrator
}

// New builds every client and component from configuration.
func New(cfg *config.Config) *App {
	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set, every article will classify as neutral")
	}
	if cfg.NewsAPIKey == "" {
		log.Warn().Msg("NEWS_API_KEY is not set, sentiment will be neutral")
	}

	recorder := metrics.New()
	// one budget for the retrying clients and the per-call deadlines that
	// wrap them, so a deadline never cuts a retry sequence short
	callTimeout := httpClient.RetryBudget(cfg.RequestTimeout, cfg.MaxRetries)

	gecko := coingecko.NewClient(coingecko.ClientOptions{
		BaseURL:         cfg.CoinGeckoURL,
		APIKey:          cfg.CoinGeckoAPIKey,
		RequestTimeout:  cfg.RequestTimeout,
		RequestsPerSec:  cfg.RequestsPerSec,
		MaxRetries:      cfg.MaxRetries,
		MaxRetryTimeout: callTimeout,
	})
	exchange := binance.NewClient(binance.ClientOptions{
		SpotURL:         cfg.BinanceSpotURL,
		FuturesURL:      cfg.BinanceFuturesURL,
		RequestTimeout:  cfg.RequestTimeout,
		RequestsPerSec:  cfg.RequestsPerSec,
		MaxRetries:      cfg.MaxRetries,
		MaxRetryTimeout: callTimeout,
	})
	news := newsapi.NewClient(newsapi.ClientOptions{
		BaseURL:         cfg.NewsAPIURL,
		APIKey:          cfg.NewsAPIKey,
		RequestTimeout:  cfg.RequestTimeout,
		RequestsPerSec:  cfg.RequestsPerSec,
		MaxRetries:      cfg.MaxRetries,
		MaxRetryTimeout: callTimeout,
	})
	classifier := openai.NewClient(openai.ClientOptions{
		APIKey:         cfg.OpenAIAPIKey,
		Model:          cfg.OpenAIModel,
		RequestTimeout: cfg.RequestTimeout,
	})

	params := calculate.Params{
		SMAPeriod:        cfg.SMAPeriod,
		RSIPeriod:        cfg.RSIPeriod,
		BBPeriod:         cfg.BBPeriod,
		BBStdDev:         cfg.BBStdDev,
		MACDFastPeriod:   cfg.MACDFastPeriod,
		MACDSlowPeriod:   cfg.MACDSlowPeriod,
		MACDSignalPeriod: cfg.MACDSignalPeriod,
	}
	candlePeriods := cfg.CandleMinPeriods
	if need := params.MinPeriods(); candlePeriods < need {
		candlePeriods = need
	}

	market := marketdata.NewAggregator(gecko, exchange, exchange, exchange, marketdata.Options{
		VsCurrency:     cfg.VsCurrency,
		CandlePeriods:  candlePeriods,
		OrderBookDepth: cfg.OrderBookDepth,
		TradeLimit:     cfg.TradeLimit,
		CallTimeout:    callTimeout,
	}, recorder)

	orchestrator := strategy.New(strategy.Dependencies{
		Lister:     gecko,
		Resolver:   assets.NewResolver(),
		MarketData: market,
		Sentiment:  sentiment.NewAggregator(news, classifier, sentiment.Options{
			MaxArticles: cfg.NewsLimit,
			CallTimeout: callTimeout,
		}, recorder),
		Volatility: technical.NewVolatilityEstimator(cfg.VolatilityWindow),
		Engine:     analyze.NewEngine(cfg.RSIOversold, cfg.RSIOverbought),
		Observer:   recorder,
	}, strategy.Options{
		Workers:    cfg.Workers,
		Indicators: params,
	})

	return &App{
		Config:       cfg,
		Metrics:      recorder,
		Orchestrator: orchestrator,
	}
}
