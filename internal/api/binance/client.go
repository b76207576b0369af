package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpClient "github.com/Alias1177/CoinSignal/internal/platform/http"
	"github.com/Alias1177/CoinSignal/internal/utils"
	"github.com/Alias1177/CoinSignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultSpotURL    = "https://api.binance.com/api/v3"
	defaultFuturesURL = "https://fapi.binance.com/fapi/v1"

	maxTradeLimit   = 1000
	fundingRateRows = 10
)

// depth values accepted by /depth
var depthLimits = []int{5, 10, 20, 50, 100, 500, 1000, 5000}

// Client talks to the Binance spot and USDⓈ-M futures REST APIs.
type Client struct {
	spotURL    string
	futuresURL string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	SpotURL         string
	FuturesURL      string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Binance client
func NewClient(options ClientOptions) *Client {
	spotURL := strings.TrimSuffix(options.SpotURL, "/")
	if spotURL == "" {
		spotURL = defaultSpotURL
	}
	futuresURL := strings.TrimSuffix(options.FuturesURL, "/")
	if futuresURL == "" {
		futuresURL = defaultFuturesURL
	}

	return &Client{
		spotURL:    spotURL,
		futuresURL: futuresURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
	}
}

type depthResponse struct {
	LastUpdateID int64             `json:"lastUpdateId"`
	Bids         []json.RawMessage `json:"bids"`
	Asks         []json.RawMessage `json:"asks"`
}

// GetOrderBook fetches the order book, best levels first. Malformed levels
// are dropped individually.
func (c *Client) GetOrderBook(ctx context.Context, tradingPair string, depth int) (*models.OrderBook, error) {
	if tradingPair == "" {
		return nil, fmt.Errorf("trading pair is required")
	}

	params := url.Values{
		"symbol": {tradingPair},
		"limit":  {strconv.Itoa(snapDepth(depth))},
	}

	var resp depthResponse
	if err := c.httpClient.GetJSON(ctx, c.spotURL+"/depth", params, &resp); err != nil {
		return nil, fmt.Errorf("depth %s: %w", tradingPair, err)
	}

	bids, droppedBids := toLevels(resp.Bids)
	asks, droppedAsks := toLevels(resp.Asks)
	if dropped := droppedBids + droppedAsks; dropped > 0 {
		c.logger.Warn().Str("pair", tradingPair).Int("dropped", dropped).Msg("Dropped malformed order book levels")
	}

	book := &models.OrderBook{Bids: bids, Asks: asks}
	c.logger.Debug().Str("pair", tradingPair).Int("bids", len(book.Bids)).Int("asks", len(book.Asks)).Msg("Fetched order book")
	return book, nil
}

// toLevels parses [price, qty] rows, skipping any that are not numeric.
func toLevels(rows []json.RawMessage) ([]models.PriceLevel, int) {
	levels := make([]models.PriceLevel, 0, len(rows))
	dropped := 0
	for _, raw := range rows {
		row, ok := utils.DecodeRow(raw)
		if !ok || len(row) < 2 {
			dropped++
			continue
		}
		price, okPrice := utils.ToDecimalString(row[0])
		qty, okQty := utils.ToDecimalString(row[1])
		if !okPrice || !okQty {
			dropped++
			continue
		}
		levels = append(levels, models.PriceLevel{Price: price, Quantity: qty})
	}
	return levels, dropped
}

// snapDepth rounds up to the nearest depth Binance accepts.
func snapDepth(depth int) int {
	for _, d := range depthLimits {
		if depth <= d {
			return d
		}
	}
	return depthLimits[len(depthLimits)-1]
}

// GetRecentTrades fetches the recent trade tape. A trade without a usable
// price or time is dropped; the rest of the tape is kept.
func (c *Client) GetRecentTrades(ctx context.Context, tradingPair string, limit int) ([]models.Trade, error) {
	if tradingPair == "" {
		return nil, fmt.Errorf("trading pair is required")
	}
	if limit <= 0 || limit > maxTradeLimit {
		limit = maxTradeLimit
	}

	params := url.Values{
		"symbol": {tradingPair},
		"limit":  {strconv.Itoa(limit)},
	}

	var raw json.RawMessage
	if err := c.httpClient.GetJSON(ctx, c.spotURL+"/trades", params, &raw); err != nil {
		return nil, fmt.Errorf("trades %s: %w", tradingPair, err)
	}
	elems, err := utils.DecodeArray(raw)
	if err != nil {
		return nil, fmt.Errorf("trades %s: %w", tradingPair, err)
	}

	trades := make([]models.Trade, 0, len(elems))
	dropped := 0
	for _, elem := range elems {
		trade, ok := toTrade(elem)
		if !ok {
			dropped++
			continue
		}
		trades = append(trades, trade)
	}

	if dropped > 0 {
		c.logger.Warn().Str("pair", tradingPair).Int("dropped", dropped).Msg("Dropped malformed trades")
	}
	c.logger.Debug().Str("pair", tradingPair).Int("count", len(trades)).Msg("Fetched trades")
	return trades, nil
}

func toTrade(raw json.RawMessage) (models.Trade, bool) {
	obj, ok := utils.DecodeObject(raw)
	if !ok {
		return models.Trade{}, false
	}
	price, ok := utils.ToDecimalString(obj["price"])
	if !ok {
		return models.Trade{}, false
	}
	ts, ok := utils.ToInt64(obj["time"])
	if !ok || ts <= 0 {
		return models.Trade{}, false
	}
	// quantity is informational only
	qty, _ := utils.ToString(obj["qty"])
	return models.Trade{Price: price, Quantity: qty, Time: ts}, true
}

// GetOpenInterest fetches futures open interest.
func (c *Client) GetOpenInterest(ctx context.Context, tradingPair string) (*models.OpenInterest, error) {
	if tradingPair == "" {
		return nil, fmt.Errorf("trading pair is required")
	}

	var raw json.RawMessage
	params := url.Values{"symbol": {tradingPair}}
	if err := c.httpClient.GetJSON(ctx, c.futuresURL+"/openInterest", params, &raw); err != nil {
		return nil, fmt.Errorf("openInterest %s: %w", tradingPair, err)
	}

	obj, ok := utils.DecodeObject(raw)
	if !ok {
		return nil, fmt.Errorf("openInterest %s: unexpected response", tradingPair)
	}
	value, ok := utils.ToDecimalString(obj["openInterest"])
	if !ok {
		return nil, fmt.Errorf("openInterest %s: missing or malformed value", tradingPair)
	}
	ts, _ := utils.ToInt64(obj["time"])

	return &models.OpenInterest{Value: value, Time: ts}, nil
}

// GetFundingRates fetches the latest funding rate history. Malformed
// entries are dropped individually.
func (c *Client) GetFundingRates(ctx context.Context, tradingPair string) ([]models.FundingRate, error) {
	if tradingPair == "" {
		return nil, fmt.Errorf("trading pair is required")
	}

	params := url.Values{
		"symbol": {tradingPair},
		"limit":  {strconv.Itoa(fundingRateRows)},
	}

	var raw json.RawMessage
	if err := c.httpClient.GetJSON(ctx, c.futuresURL+"/fundingRate", params, &raw); err != nil {
		return nil, fmt.Errorf("fundingRate %s: %w", tradingPair, err)
	}
	elems, err := utils.DecodeArray(raw)
	if err != nil {
		return nil, fmt.Errorf("fundingRate %s: %w", tradingPair, err)
	}

	rates := make([]models.FundingRate, 0, len(elems))
	for _, elem := range elems {
		obj, ok := utils.DecodeObject(elem)
		if !ok {
			continue
		}
		rate, okRate := utils.ToDecimalString(obj["fundingRate"])
		ts, okTime := utils.ToInt64(obj["fundingTime"])
		if !okRate || !okTime {
			continue
		}
		rates = append(rates, models.FundingRate{Rate: rate, Time: ts})
	}
	return rates, nil
}
