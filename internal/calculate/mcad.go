package calculate

import "github.com/Alias1177/CoinSignal/models"

// MACDRow is one point of the MACD series
type MACDRow struct {
	Line, Signal, Histogram models.Float
}

// MACD computes line = EMA(fast) - EMA(slow), signal = EMA(signalPeriod)
// of the line and their difference. The line is defined from index
// slow-1, the signal from slow+signalPeriod-2.
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) []MACDRow {
	out := make([]MACDRow, len(closes))
	if len(closes) < slowPeriod {
		return out
	}

	series := floats(closes)
	fast := EMA(series, fastPeriod)
	slow := EMA(series, slowPeriod)

	line := make([]models.Float, len(closes))
	for i := range closes {
		if fast[i].Valid && slow[i].Valid {
			line[i] = models.Some(fast[i].Value - slow[i].Value)
		}
	}

	signal := EMA(line, signalPeriod)
	for i := range closes {
		out[i].Line = line[i]
		out[i].Signal = signal[i]
		if line[i].Valid && signal[i].Valid {
			out[i].Histogram = models.Some(line[i].Value - signal[i].Value)
		}
	}

	return out
}
