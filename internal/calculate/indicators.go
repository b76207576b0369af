package calculate

import (
	"math"
	"sort"

	"github.com/Alias1177/CoinSignal/models"
)

// Params are the indicator windows.
type Params struct {
	SMAPeriod        int
	RSIPeriod        int
	BBPeriod         int
	BBStdDev         float64
	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int
}

// DefaultParams returns the standard windows: SMA20, RSI14, BB 20/2, MACD 12/26/9.
func DefaultParams() Params {
	return Params{
		SMAPeriod:        20,
		RSIPeriod:        14,
		BBPeriod:         20,
		BBStdDev:         2,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 9,
	}
}

// MinPeriods is the longest window any indicator needs before its first
// defined point.
func (p Params) MinPeriods() int {
	n := p.SMAPeriod
	for _, v := range []int{p.RSIPeriod + 1, p.BBPeriod, p.MACDSlowPeriod + p.MACDSignalPeriod - 1} {
		if v > n {
			n = v
		}
	}
	return n
}

// NormalizeSeries drops candles with non-finite OHLC values, orders the rest
// by time and keeps the first candle for a repeated timestamp.
func NormalizeSeries(candles []models.Candle) []models.Candle {
	out := make([]models.Candle, 0, len(candles))
	for _, c := range candles {
		if !finite(c.Open, c.High, c.Low, c.Close) {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	uniq := out[:0]
	for i, c := range out {
		if i > 0 && c.Timestamp.Equal(uniq[len(uniq)-1].Timestamp) {
			continue
		}
		uniq = append(uniq, c)
	}
	return uniq
}

// Closes extracts closing prices
func Closes(candles []models.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}
	return closes
}

// Compute calculates the latest point of every indicator. Indicators whose
// window is longer than the series are unavailable.
func Compute(candles []models.Candle, params Params) models.IndicatorSet {
	var set models.IndicatorSet
	closes := Closes(NormalizeSeries(candles))
	if len(closes) == 0 {
		return set
	}
	last := len(closes) - 1

	set.SMA = SMA(closes, params.SMAPeriod)[last]
	set.RSI = RSI(closes, params.RSIPeriod)[last]

	bb := Bollinger(closes, params.BBPeriod, params.BBStdDev)[last]
	set.Bollinger = models.BollingerBands{Upper: bb.Upper, Middle: bb.Middle, Lower: bb.Lower}

	macd := MACD(closes, params.MACDFastPeriod, params.MACDSlowPeriod, params.MACDSignalPeriod)[last]
	set.MACD = models.MACD{Line: macd.Line, Signal: macd.Signal, Histogram: macd.Histogram}

	return set
}

// LatestClose is the close of the newest valid candle.
func LatestClose(candles []models.Candle) models.Float {
	series := NormalizeSeries(candles)
	if len(series) == 0 {
		return models.Unavailable
	}
	return models.Some(series[len(series)-1].Close)
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
