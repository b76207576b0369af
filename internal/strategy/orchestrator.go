package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/CoinSignal/internal/analysis/technical"
	"github.com/Alias1177/CoinSignal/internal/analyze"
	"github.com/Alias1177/CoinSignal/internal/assets"
	"github.com/Alias1177/CoinSignal/internal/calculate"
	"github.com/Alias1177/CoinSignal/internal/marketdata"
	"github.com/Alias1177/CoinSignal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrPipelinePanic marks an asset whose pipeline panicked.
var ErrPipelinePanic = errors.New("asset pipeline panicked")

// Run outcomes
const (
	OutcomeCompleted = "completed"
	OutcomeEmpty     = "empty"
	OutcomeCancelled = "cancelled"
)

// DefaultWorkers bounds concurrent asset pipelines
const DefaultWorkers = 4

// MarketDataFetcher collects market data for one asset.
type MarketDataFetcher interface {
	Fetch(ctx context.Context, asset models.Asset) (models.AssetMarketData, error)
}

// SentimentSource produces the sentiment of one asset. It must not fail.
type SentimentSource interface {
	Aggregate(ctx context.Context, asset models.Asset) models.SentimentResult
}

// Observer receives run and asset outcomes.
type Observer interface {
	RunFinished(outcome string)
	AssetProcessed(signal models.Signal, took time.Duration)
	AssetFailed()
}

type noopObserver struct{}

func (noopObserver) RunFinished(string)                         {}
func (noopObserver) AssetProcessed(models.Signal, time.Duration) {}
func (noopObserver) AssetFailed()                                {}

// Dependencies are the collaborators of an orchestrator.
type Dependencies struct {
	Lister     models.AssetLister
	Resolver   *assets.Resolver
	MarketData MarketDataFetcher
	Sentiment  SentimentSource
	Volatility *technical.VolatilityEstimator
	Engine     *analyze.Engine
	Observer   Observer
}

// Options tune the orchestrator
type Options struct {
	Workers    int
	Indicators calculate.Params
}

// Orchestrator drives the per-asset pipeline over the top ranked assets.
type Orchestrator struct {
	deps    Dependencies
	opts    Options
	logger  zerolog.Logger
	nowFunc func() time.Time
}

// New creates an orchestrator. Missing optional dependencies get defaults.
func New(deps Dependencies, opts Options) *Orchestrator {
	if deps.Resolver == nil {
		deps.Resolver = assets.NewResolver()
	}
	if deps.Volatility == nil {
		deps.Volatility = technical.NewVolatilityEstimator(technical.DefaultVolatilityWindow)
	}
	if deps.Engine == nil {
		deps.Engine = analyze.NewEngine(analyze.DefaultOversold, analyze.DefaultOverbought)
	}
	if deps.Observer == nil {
		deps.Observer = noopObserver{}
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Indicators == (calculate.Params{}) {
		opts.Indicators = calculate.DefaultParams()
	}

	return &Orchestrator{
		deps:    deps,
		opts:    opts,
		logger:  log.With().Str("component", "orchestrator").Logger(),
		nowFunc: time.Now,
	}
}

// Run produces one decision record per resolved asset, at most topN.
// A failing asset yields a degraded HOLD record instead of an error. The
// only error is the context's, in which case the records finished before
// cancellation are returned.
func (o *Orchestrator) Run(ctx context.Context, topN int) ([]models.DecisionRecord, error) {
	runID := uuid.NewString()
	logger := o.logger.With().Str("run_id", runID).Logger()
	started := o.nowFunc()

	raw, err := o.deps.Lister.ListTopAssets(ctx, topN)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			o.deps.Observer.RunFinished(OutcomeCancelled)
			return []models.DecisionRecord{}, ctxErr
		}
		logger.Warn().Err(err).Msg("Asset ranking unavailable")
	}

	resolved := o.deps.Resolver.Resolve(raw)
	if topN > 0 && len(resolved) > topN {
		resolved = resolved[:topN]
	}
	if len(resolved) == 0 {
		logger.Warn().Msg("No assets resolved, nothing to do")
		o.deps.Observer.RunFinished(OutcomeEmpty)
		return []models.DecisionRecord{}, nil
	}

	logger.Info().Int("assets", len(resolved)).Int("workers", o.opts.Workers).Msg("Starting run")

	records := make([]models.DecisionRecord, len(resolved))
	finished := make([]bool, len(resolved))

	var g errgroup.Group
	g.SetLimit(o.opts.Workers)
	for i, asset := range resolved {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rec := o.processAsset(ctx, asset, logger)
			// work cut short by cancellation is discarded
			if ctx.Err() != nil {
				return nil
			}
			records[i] = rec
			finished[i] = true
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		done := make([]models.DecisionRecord, 0, len(records))
		for i, rec := range records {
			if finished[i] {
				done = append(done, rec)
			}
		}
		logger.Warn().Err(err).Int("finished", len(done)).Msg("Run cancelled")
		o.deps.Observer.RunFinished(OutcomeCancelled)
		return done, err
	}

	logger.Info().Dur("took", o.nowFunc().Sub(started)).Msg("Run completed")
	o.deps.Observer.RunFinished(OutcomeCompleted)
	return records, nil
}

// processAsset is the per-asset failure boundary.
func (o *Orchestrator) processAsset(ctx context.Context, asset models.Asset, runLogger zerolog.Logger) (record models.DecisionRecord) {
	logger := runLogger.With().Str("asset", asset.ID).Logger()
	start := o.nowFunc()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Asset pipeline panicked")
			record = o.degrade(asset, fmt.Errorf("%w: %v", ErrPipelinePanic, r))
		}
		o.deps.Observer.AssetProcessed(record.Signal, o.nowFunc().Sub(start))
	}()

	var (
		data      models.AssetMarketData
		sentiment models.SentimentResult
	)

	var g errgroup.Group
	g.Go(guard("market data", func() error {
		var err error
		data, err = o.deps.MarketData.Fetch(ctx, asset)
		return err
	}))
	g.Go(guard("sentiment", func() error {
		sentiment = o.deps.Sentiment.Aggregate(ctx, asset)
		return nil
	}))
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Asset pipeline failed")
		return o.degrade(asset, err)
	}

	indicators := calculate.Compute(data.Candles, o.opts.Indicators)
	volatility := o.deps.Volatility.Estimate(data.Trades)
	decision := o.deps.Engine.DetermineTradeSignal(analyze.Snapshot{
		Indicators: indicators,
		Sentiment:  sentiment.Label,
	})

	record = models.DecisionRecord{
		Asset:            asset,
		LatestPrice:      calculate.LatestClose(data.Candles),
		Indicators:       indicators,
		SentimentLabel:   sentiment.Label,
		SentimentScore:   sentiment.Score,
		ArticlesAnalyzed: sentiment.ArticlesAnalyzed,
		OrderBookSummary: marketdata.SummarizeOrderBook(data.OrderBook),
		Volatility:       volatility,
		OpenInterest:     data.OpenInterest,
		FundingRate:      data.FundingRate,
		DecisionFactors:  decision.Factors,
		Signal:           decision.Signal,
	}

	logger.Info().Str("signal", string(record.Signal)).Strs("factors", record.DecisionFactors).Msg("Asset processed")
	return record
}

func (o *Orchestrator) degrade(asset models.Asset, err error) models.DecisionRecord {
	o.deps.Observer.AssetFailed()
	return models.DegradedRecord(asset, fmt.Sprintf("Analysis failed: %v", err))
}

// guard turns a panic in fn into ErrPipelinePanic.
func guard(stage string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %s: %v", ErrPipelinePanic, stage, r)
			}
		}()
		if ferr := fn(); ferr != nil {
			if errors.Is(ferr, marketdata.ErrSubFetchPanic) {
				return fmt.Errorf("%w: %w", ErrPipelinePanic, ferr)
			}
			return ferr
		}
		return nil
	}
}
