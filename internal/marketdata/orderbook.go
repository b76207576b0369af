package marketdata

import (
	"github.com/Alias1177/CoinSignal/models"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// SummarizeOrderBook reduces the top of book to best bid/ask, spread and
// mid price. Any missing or unparsable top level makes the whole summary
// unavailable.
func SummarizeOrderBook(book *models.OrderBook) models.OrderBookSummary {
	if book == nil || len(book.Bids) == 0 || len(book.Asks) == 0 {
		return models.OrderBookSummary{}
	}

	bid, err := decimal.NewFromString(book.Bids[0].Price)
	if err != nil {
		return models.OrderBookSummary{}
	}
	ask, err := decimal.NewFromString(book.Asks[0].Price)
	if err != nil {
		return models.OrderBookSummary{}
	}

	return models.OrderBookSummary{
		BestBid:  models.Some(bid.InexactFloat64()),
		BestAsk:  models.Some(ask.InexactFloat64()),
		Spread:   models.Some(ask.Sub(bid).InexactFloat64()),
		MidPrice: models.Some(bid.Add(ask).Div(two).InexactFloat64()),
	}
}
