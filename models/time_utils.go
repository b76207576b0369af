package models

// CoinGecko picks OHLC granularity from the requested day range:
// 1-2 days -> 30 minutes, 3-30 days -> 4 hours, 31+ days -> 4 days.
var ohlcDayBuckets = []int{1, 7, 14, 30, 90, 180, 365}

func candlesPerDay(days int) float64 {
	switch {
	case days <= 2:
		return 48
	case days <= 30:
		return 6
	default:
		return 0.25
	}
}

// OHLCDaysFor returns the smallest supported day range that yields at least
// periods candles. Falls back to the largest bucket.
func OHLCDaysFor(periods int) int {
	for _, days := range ohlcDayBuckets {
		// first candle of the range is usually partial, hence the -1
		if int(candlesPerDay(days)*float64(days))-1 >= periods {
			return days
		}
	}
	return ohlcDayBuckets[len(ohlcDayBuckets)-1]
}
