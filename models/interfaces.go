package models

import "context"

// AssetLister ranks tradable assets, e.g. by market cap.
type AssetLister interface {
	ListTopAssets(ctx context.Context, limit int) ([]RawAsset, error)
}

// CandleClient returns candle history. An empty slice means "no data".
type CandleClient interface {
	GetCandles(ctx context.Context, assetID, vsCurrency string, lookback int) ([]Candle, error)
}

// OrderBookClient returns the current order book for a trading pair.
type OrderBookClient interface {
	GetOrderBook(ctx context.Context, tradingPair string, depth int) (*OrderBook, error)
}

// TradeClient returns the recent trade tape for a trading pair.
type TradeClient interface {
	GetRecentTrades(ctx context.Context, tradingPair string, limit int) ([]Trade, error)
}

// DerivativesClient returns futures metrics for a trading pair.
type DerivativesClient interface {
	GetOpenInterest(ctx context.Context, tradingPair string) (*OpenInterest, error)
	GetFundingRates(ctx context.Context, tradingPair string) ([]FundingRate, error)
}

// NewsClient searches news by keywords.
type NewsClient interface {
	GetNews(ctx context.Context, keywords string, limit int) ([]NewsArticle, error)
}

// SentimentClassifier labels a piece of text.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (SentimentLabel, error)
}
