package models

import (
	"time"
)

// RawAsset is a ranked-asset record as returned by the ranking provider.
// Fields may be empty; the resolver decides what survives.
type RawAsset struct {
	ID           string `json:"id"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	PriceUSD     Float  `json:"current_price"`
	MarketCapUSD Float  `json:"market_cap"`
}

// Asset is a resolved, tradable asset
type Asset struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"` // lowercased
	Name        string `json:"name"`
	TradingPair string `json:"trading_pair"` // e.g. BTCUSDT
}

// Candle represents a single price candle
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// Trade is a single executed trade from the tape. Price and quantity are kept
// as the exchange sent them; consumers parse them defensively.
type Trade struct {
	Price    string `json:"price"`
	Quantity string `json:"qty"`
	Time     int64  `json:"time"` // unix millis, 0 when missing
}

// PriceLevel is one [price, quantity] order book row.
type PriceLevel struct {
	Price    string
	Quantity string
}

// OrderBook holds the outstanding bids and asks, best level first.
type OrderBook struct {
	Bids []PriceLevel
	Asks []PriceLevel
}

// OrderBookSummary condenses the top of the book.
type OrderBookSummary struct {
	BestBid  Float `json:"best_bid"`
	BestAsk  Float `json:"best_ask"`
	Spread   Float `json:"spread"`
	MidPrice Float `json:"mid_price"`
}

// OpenInterest is the outstanding futures contracts for a pair.
type OpenInterest struct {
	Value string
	Time  int64
}

// FundingRate is one perpetual-futures funding payment.
type FundingRate struct {
	Rate string
	Time int64
}

// NewsArticle is a single news item used for sentiment
type NewsArticle struct {
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`
}

// Text returns the text submitted for classification.
func (a NewsArticle) Text() string {
	switch {
	case a.Title == "":
		return a.Snippet
	case a.Snippet == "":
		return a.Title
	}
	return a.Title + " " + a.Snippet
}

// SentimentLabel is the classifier vocabulary
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// ParseSentimentLabel maps a normalised word onto the vocabulary.
func ParseSentimentLabel(s string) (SentimentLabel, bool) {
	switch SentimentLabel(s) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return SentimentLabel(s), true
	}
	return "", false
}

// SentimentResult is the aggregate over an asset's news.
type SentimentResult struct {
	Label            SentimentLabel `json:"label"`
	Score            int            `json:"score"` // -1, 0 or 1
	ArticlesAnalyzed int            `json:"articles_analyzed"`
}

// NeutralSentiment is the result when nothing could be said.
func NeutralSentiment() SentimentResult {
	return SentimentResult{Label: SentimentNeutral}
}

// Signal is the discrete recommendation
type Signal string

const (
	SignalBuy          Signal = "BUY"
	SignalSell         Signal = "SELL"
	SignalHold         Signal = "HOLD"
	SignalConsiderBuy  Signal = "CONSIDER_BUY"
	SignalConsiderSell Signal = "CONSIDER_SELL"
)

// BollingerBands holds the latest band values
type BollingerBands struct {
	Upper  Float `json:"upper"`
	Middle Float `json:"middle"`
	Lower  Float `json:"lower"`
}

// MACD holds the latest MACD point
type MACD struct {
	Line      Float `json:"line"`
	Signal    Float `json:"signal"`
	Histogram Float `json:"histogram"`
}

// IndicatorSet holds the latest point of every technical indicator.
type IndicatorSet struct {
	SMA       Float          `json:"sma"`
	RSI       Float          `json:"rsi"`
	Bollinger BollingerBands `json:"bollinger"`
	MACD      MACD           `json:"macd"`
}

// AssetMarketData is everything fetched for one asset. Each field is
// independently absent: nil slices/pointers and unavailable floats.
type AssetMarketData struct {
	Candles      []Candle
	OrderBook    *OrderBook
	Trades       []Trade
	OpenInterest Float
	FundingRate  Float
}

// DecisionRecord is the per-asset output of a run.
type DecisionRecord struct {
	Asset            Asset            `json:"asset"`
	LatestPrice      Float            `json:"latest_price"`
	Indicators       IndicatorSet     `json:"indicators"`
	SentimentLabel   SentimentLabel   `json:"sentiment_label"`
	SentimentScore   int              `json:"sentiment_score"`
	ArticlesAnalyzed int              `json:"articles_analyzed"`
	OrderBookSummary OrderBookSummary `json:"order_book_summary"`
	Volatility       Float            `json:"volatility"`
	OpenInterest     Float            `json:"open_interest"`
	FundingRate      Float            `json:"funding_rate"`
	DecisionFactors  []string         `json:"decision_factors"`
	Signal           Signal           `json:"signal"`
}

// DegradedRecord is the record produced when an asset's pipeline fails.
func DegradedRecord(asset Asset, factor string) DecisionRecord {
	return DecisionRecord{
		Asset:           asset,
		SentimentLabel:  SentimentNeutral,
		DecisionFactors: []string{factor},
		Signal:          SignalHold,
	}
}
