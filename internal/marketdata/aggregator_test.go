package marketdata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Alias1177/CoinSignal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	candles      []models.Candle
	candlesErr   error
	book         *models.OrderBook
	bookErr      error
	trades       []models.Trade
	tradesErr    error
	oi           *models.OpenInterest
	oiErr        error
	funding      []models.FundingRate
	fundingErr   error
	panicOn      string
	blockFunding bool

	mu        sync.Mutex
	gotPeriod int
	gotPair   string
}

func (s *stubSource) GetCandles(ctx context.Context, assetID, vsCurrency string, lookback int) ([]models.Candle, error) {
	if s.panicOn == SourceCandles {
		panic("candles exploded")
	}
	s.mu.Lock()
	s.gotPeriod = lookback
	s.mu.Unlock()
	return s.candles, s.candlesErr
}

func (s *stubSource) GetOrderBook(ctx context.Context, pair string, depth int) (*models.OrderBook, error) {
	s.mu.Lock()
	s.gotPair = pair
	s.mu.Unlock()
	return s.book, s.bookErr
}

func (s *stubSource) GetRecentTrades(ctx context.Context, pair string, limit int) ([]models.Trade, error) {
	return s.trades, s.tradesErr
}

func (s *stubSource) GetOpenInterest(ctx context.Context, pair string) (*models.OpenInterest, error) {
	return s.oi, s.oiErr
}

func (s *stubSource) GetFundingRates(ctx context.Context, pair string) ([]models.FundingRate, error) {
	if s.blockFunding {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.funding, s.fundingErr
}

type countingObserver struct {
	mu     sync.Mutex
	failed map[string]int
}

func (o *countingObserver) SourceFailed(source string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failed == nil {
		o.failed = map[string]int{}
	}
	o.failed[source]++
}

var btc = models.Asset{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", TradingPair: "BTCUSDT"}

func newTestAggregator(src *stubSource, obs Observer) *Aggregator {
	return NewAggregator(src, src, src, src, Options{CandlePeriods: 40, CallTimeout: 50 * time.Millisecond}, obs)
}

func TestFetchAllSources(t *testing.T) {
	src := &stubSource{
		candles: []models.Candle{{Timestamp: time.Unix(0, 0), Close: 1}},
		book: &models.OrderBook{
			Bids: []models.PriceLevel{{Price: "99.5", Quantity: "1"}},
			Asks: []models.PriceLevel{{Price: "100.5", Quantity: "2"}},
		},
		trades: []models.Trade{{Price: "100", Quantity: "1", Time: 1}},
		oi:     &models.OpenInterest{Value: "12345.6"},
		funding: []models.FundingRate{
			{Rate: "0.0001", Time: 100},
			{Rate: "0.0003", Time: 300},
			{Rate: "0.0002", Time: 200},
		},
	}

	data, err := newTestAggregator(src, nil).Fetch(context.Background(), btc)
	require.NoError(t, err)
	assert.Len(t, data.Candles, 1)
	assert.NotNil(t, data.OrderBook)
	assert.Len(t, data.Trades, 1)
	assert.Equal(t, models.Some(12345.6), data.OpenInterest)
	assert.Equal(t, models.Some(0.0003), data.FundingRate)
	assert.Equal(t, 40, src.gotPeriod)
	assert.Equal(t, "BTCUSDT", src.gotPair)
}

func TestFetchToleratesFailures(t *testing.T) {
	boom := errors.New("boom")
	src := &stubSource{
		candles:      []models.Candle{{Timestamp: time.Unix(0, 0), Close: 1}},
		bookErr:      boom,
		tradesErr:    boom,
		oi:           &models.OpenInterest{Value: ""},
		blockFunding: true,
	}
	obs := &countingObserver{}

	data, err := newTestAggregator(src, obs).Fetch(context.Background(), btc)
	require.NoError(t, err)
	assert.Len(t, data.Candles, 1)
	assert.Nil(t, data.OrderBook)
	assert.Nil(t, data.Trades)
	assert.False(t, data.OpenInterest.Valid)
	assert.False(t, data.FundingRate.Valid)

	assert.Equal(t, 1, obs.failed[SourceOrderBook])
	assert.Equal(t, 1, obs.failed[SourceTrades])
	assert.Equal(t, 1, obs.failed[SourceOpenInterest])
	assert.Equal(t, 1, obs.failed[SourceFundingRate])
	assert.Zero(t, obs.failed[SourceCandles])
}

func TestFetchPanicBecomesError(t *testing.T) {
	src := &stubSource{panicOn: SourceCandles}
	_, err := newTestAggregator(src, nil).Fetch(context.Background(), btc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubFetchPanic)
	assert.Contains(t, err.Error(), "candles exploded")
}

func TestLatestFundingRate(t *testing.T) {
	assert.False(t, LatestFundingRate(nil).Valid)
	assert.Equal(t, models.Some(-0.01), LatestFundingRate([]models.FundingRate{
		{Rate: "bad", Time: 900},
		{Rate: "-0.01", Time: 500},
	}))
}

func TestParseOpenInterest(t *testing.T) {
	assert.False(t, ParseOpenInterest(nil).Valid)
	assert.False(t, ParseOpenInterest(&models.OpenInterest{Value: "n/a"}).Valid)
	assert.Equal(t, models.Some(5.5), ParseOpenInterest(&models.OpenInterest{Value: "5.5"}))
}

func TestSummarizeOrderBook(t *testing.T) {
	summary := SummarizeOrderBook(&models.OrderBook{
		Bids: []models.PriceLevel{{Price: "100.10"}, {Price: "100.00"}},
		Asks: []models.PriceLevel{{Price: "100.30"}},
	})
	require.True(t, summary.Spread.Valid)
	assert.InDelta(t, 0.2, summary.Spread.Value, 1e-12)
	assert.InDelta(t, 100.2, summary.MidPrice.Value, 1e-12)
	assert.Equal(t, 100.1, summary.BestBid.Value)
	assert.Equal(t, 100.3, summary.BestAsk.Value)

	assert.Equal(t, models.OrderBookSummary{}, SummarizeOrderBook(nil))
	assert.Equal(t, models.OrderBookSummary{}, SummarizeOrderBook(&models.OrderBook{
		Bids: []models.PriceLevel{{Price: "x"}},
		Asks: []models.PriceLevel{{Price: "1"}},
	}))
	assert.Equal(t, models.OrderBookSummary{}, SummarizeOrderBook(&models.OrderBook{
		Asks: []models.PriceLevel{{Price: "1"}},
	}))
}
