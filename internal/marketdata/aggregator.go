package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/CoinSignal/internal/utils"
	"github.com/Alias1177/CoinSignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Sub-fetch names, used in logs and metrics
const (
	SourceCandles      = "candles"
	SourceOrderBook    = "order_book"
	SourceTrades       = "trades"
	SourceOpenInterest = "open_interest"
	SourceFundingRate  = "funding_rate"
)

// ErrSubFetchPanic wraps a panic recovered inside a sub-fetch goroutine.
var ErrSubFetchPanic = errors.New("market data sub-fetch panicked")

// Observer is notified about sub-fetches that produced no data.
type Observer interface {
	SourceFailed(source string)
}

type noopObserver struct{}

func (noopObserver) SourceFailed(string) {}

// Options controls what is requested per asset.
type Options struct {
	VsCurrency     string
	CandlePeriods  int
	OrderBookDepth int
	TradeLimit     int
	CallTimeout    time.Duration
}

// Aggregator collects every market data source for one asset.
type Aggregator struct {
	candles     models.CandleClient
	books       models.OrderBookClient
	trades      models.TradeClient
	derivatives models.DerivativesClient
	opts        Options
	observer    Observer
	logger      zerolog.Logger
}

// NewAggregator creates a market data aggregator. A nil observer is allowed.
func NewAggregator(
	candles models.CandleClient,
	books models.OrderBookClient,
	trades models.TradeClient,
	derivatives models.DerivativesClient,
	opts Options,
	observer Observer,
) *Aggregator {
	if opts.VsCurrency == "" {
		opts.VsCurrency = "usd"
	}
	if opts.CandlePeriods <= 0 {
		opts.CandlePeriods = 60
	}
	if opts.OrderBookDepth <= 0 {
		opts.OrderBookDepth = 100
	}
	if opts.TradeLimit <= 0 {
		opts.TradeLimit = 200
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Second
	}
	if observer == nil {
		observer = noopObserver{}
	}

	return &Aggregator{
		candles:     candles,
		books:       books,
		trades:      trades,
		derivatives: derivatives,
		opts:        opts,
		observer:    observer,
		logger:      log.With().Str("component", "market_data").Logger(),
	}
}

// Fetch runs the five sub-fetches concurrently. A failed or timed out
// sub-fetch leaves its field absent. The only error returned is a
// recovered panic, wrapped in ErrSubFetchPanic.
func (a *Aggregator) Fetch(ctx context.Context, asset models.Asset) (models.AssetMarketData, error) {
	data := models.AssetMarketData{
		OpenInterest: models.Unavailable,
		FundingRate:  models.Unavailable,
	}
	logger := a.logger.With().Str("asset", asset.ID).Logger()

	// plain group: one failed source must not cancel the others
	var g errgroup.Group
	a.spawn(&g, ctx, logger, SourceCandles, func(ctx context.Context) error {
		candles, err := a.candles.GetCandles(ctx, asset.ID, a.opts.VsCurrency, a.opts.CandlePeriods)
		if err != nil {
			return err
		}
		data.Candles = candles
		return nil
	})
	a.spawn(&g, ctx, logger, SourceOrderBook, func(ctx context.Context) error {
		book, err := a.books.GetOrderBook(ctx, asset.TradingPair, a.opts.OrderBookDepth)
		if err != nil {
			return err
		}
		data.OrderBook = book
		return nil
	})
	a.spawn(&g, ctx, logger, SourceTrades, func(ctx context.Context) error {
		trades, err := a.trades.GetRecentTrades(ctx, asset.TradingPair, a.opts.TradeLimit)
		if err != nil {
			return err
		}
		data.Trades = trades
		return nil
	})
	a.spawn(&g, ctx, logger, SourceOpenInterest, func(ctx context.Context) error {
		oi, err := a.derivatives.GetOpenInterest(ctx, asset.TradingPair)
		if err != nil {
			return err
		}
		data.OpenInterest = ParseOpenInterest(oi)
		if !data.OpenInterest.Valid {
			return fmt.Errorf("malformed open interest")
		}
		return nil
	})
	a.spawn(&g, ctx, logger, SourceFundingRate, func(ctx context.Context) error {
		rates, err := a.derivatives.GetFundingRates(ctx, asset.TradingPair)
		if err != nil {
			return err
		}
		data.FundingRate = LatestFundingRate(rates)
		if !data.FundingRate.Valid {
			return fmt.Errorf("no usable funding rate")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.AssetMarketData{OpenInterest: models.Unavailable, FundingRate: models.Unavailable}, err
	}

	logger.Debug().
		Int("candles", len(data.Candles)).
		Int("trades", len(data.Trades)).
		Bool("order_book", data.OrderBook != nil).
		Msg("Market data collected")

	return data, nil
}

// spawn runs fetch with its own deadline. Ordinary errors are logged and
// swallowed; panics are turned into the group's error.
func (a *Aggregator) spawn(g *errgroup.Group, ctx context.Context, logger zerolog.Logger, source string, fetch func(context.Context) error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Str("source", source).Interface("panic", r).Msg("Sub-fetch panicked")
				err = fmt.Errorf("%w: %s: %v", ErrSubFetchPanic, source, r)
			}
		}()

		callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
		defer cancel()

		if ferr := fetch(callCtx); ferr != nil {
			a.observer.SourceFailed(source)
			logger.Warn().Err(ferr).Str("source", source).Msg("Sub-fetch failed, field left absent")
		}
		return nil
	})
}

// ParseOpenInterest converts the provider's string value.
func ParseOpenInterest(oi *models.OpenInterest) models.Float {
	if oi == nil {
		return models.Unavailable
	}
	v, ok := utils.ParseFloat(oi.Value)
	if !ok {
		return models.Unavailable
	}
	return models.Some(v)
}

// LatestFundingRate picks the parsable entry with the greatest funding time.
func LatestFundingRate(rates []models.FundingRate) models.Float {
	latest := models.Unavailable
	var latestTime int64
	for _, r := range rates {
		v, ok := utils.ParseFloat(r.Rate)
		if !ok {
			continue
		}
		if !latest.Valid || r.Time > latestTime {
			latest = models.Some(v)
			latestTime = r.Time
		}
	}
	return latest
}
