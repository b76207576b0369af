package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	httpClient "github.com/Alias1177/CoinSignal/internal/platform/http"
	"github.com/Alias1177/CoinSignal/internal/utils"
	"github.com/Alias1177/CoinSignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Client is the CoinGecko API client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new CoinGecko client
type ClientOptions struct {
	BaseURL         string
	APIKey          string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new CoinGecko API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}
	if options.APIKey != "" {
		httpOpts.Headers = map[string]string{"x-cg-demo-api-key": options.APIKey}
	}

	baseURL := strings.TrimSuffix(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "coingecko_client").Logger(),
	}
}

// ListTopAssets fetches the top assets by market cap.
func (c *Client) ListTopAssets(ctx context.Context, limit int) ([]models.RawAsset, error) {
	params := url.Values{
		"vs_currency": {"usd"},
		"order":       {"market_cap_desc"},
		"per_page":    {strconv.Itoa(limit)},
		"page":        {"1"},
		"sparkline":   {"false"},
	}

	c.logger.Debug().Int("limit", limit).Msg("Fetching top assets")

	var raw json.RawMessage
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/coins/markets", params, &raw); err != nil {
		return nil, fmt.Errorf("coins/markets: %w", err)
	}
	elems, err := utils.DecodeArray(raw)
	if err != nil {
		return nil, fmt.Errorf("coins/markets: %w", err)
	}

	assets := make([]models.RawAsset, 0, len(elems))
	for _, elem := range elems {
		obj, ok := utils.DecodeObject(elem)
		if !ok {
			c.logger.Warn().Str("record", string(elem)).Msg("Skipping non-object market record")
			continue
		}
		assets = append(assets, toRawAsset(obj))
	}

	c.logger.Debug().Int("count", len(assets)).Msg("Fetched top assets")
	return assets, nil
}

// toRawAsset reads fields loosely; anything that is not text stays empty
// and is filtered by the resolver.
func toRawAsset(obj map[string]any) models.RawAsset {
	asset := models.RawAsset{
		PriceUSD:     models.Unavailable,
		MarketCapUSD: models.Unavailable,
	}
	asset.ID, _ = obj["id"].(string)
	asset.Symbol, _ = obj["symbol"].(string)
	asset.Name, _ = obj["name"].(string)
	if v, ok := utils.ToFloat(obj["current_price"]); ok {
		asset.PriceUSD = models.Some(v)
	}
	if v, ok := utils.ToFloat(obj["market_cap"]); ok {
		asset.MarketCapUSD = models.Some(v)
	}
	return asset
}

// GetCandles fetches OHLC candles covering at least lookback periods.
// Rows with non-numeric fields are dropped; the result is sorted oldest first.
func (c *Client) GetCandles(ctx context.Context, assetID, vsCurrency string, lookback int) ([]models.Candle, error) {
	if assetID == "" {
		return nil, fmt.Errorf("asset id is required")
	}

	days := models.OHLCDaysFor(lookback)
	params := url.Values{
		"vs_currency": {vsCurrency},
		"days":        {strconv.Itoa(days)},
	}

	c.logger.Debug().Str("asset", assetID).Int("days", days).Msg("Fetching candles")

	var raw json.RawMessage
	endpoint := fmt.Sprintf("%s/coins/%s/ohlc", c.baseURL, url.PathEscape(assetID))
	if err := c.httpClient.GetJSON(ctx, endpoint, params, &raw); err != nil {
		return nil, fmt.Errorf("coins/%s/ohlc: %w", assetID, err)
	}

	candles, dropped, err := decodeOHLC(raw)
	if err != nil {
		c.logger.Error().Err(err).Str("asset", assetID).Msg("Error parsing OHLC")
		return nil, err
	}
	if dropped > 0 {
		c.logger.Warn().Str("asset", assetID).Int("dropped", dropped).Msg("Dropped malformed OHLC rows")
	}

	c.logger.Debug().Str("asset", assetID).Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// decodeOHLC parses [[ts, open, high, low, close], ...].
func decodeOHLC(raw []byte) ([]models.Candle, int, error) {
	elems, err := utils.DecodeArray(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("unexpected OHLC format: %w", err)
	}

	candles := make([]models.Candle, 0, len(elems))
	dropped := 0
	for _, elem := range elems {
		row, ok := utils.DecodeRow(elem)
		if !ok {
			dropped++
			continue
		}
		candle, ok := rowToCandle(row)
		if !ok {
			dropped++
			continue
		}
		candles = append(candles, candle)
	}

	// Sort candles by time (oldest first for proper calculations)
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, dropped, nil
}

func rowToCandle(row []any) (models.Candle, bool) {
	if len(row) != 5 {
		return models.Candle{}, false
	}
	ts, ok := utils.ToInt64(row[0])
	if !ok {
		return models.Candle{}, false
	}

	var ohlc [4]float64
	for i := range ohlc {
		v, ok := utils.ToFloat(row[i+1])
		if !ok {
			return models.Candle{}, false
		}
		ohlc[i] = v
	}

	return models.Candle{
		Timestamp: time.UnixMilli(ts).UTC(),
		Open:      ohlc[0],
		High:      ohlc[1],
		Low:       ohlc[2],
		Close:     ohlc[3],
	}, true
}
