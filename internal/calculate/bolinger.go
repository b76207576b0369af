package calculate

import "github.com/Alias1177/CoinSignal/models"

// BollingerRow is one point of the band series
type BollingerRow struct {
	Upper, Middle, Lower models.Float
}

// Bollinger calculates Bollinger Bands over a trailing window using the
// population standard deviation.
func Bollinger(closes []float64, period int, stdDev float64) []BollingerRow {
	out := make([]BollingerRow, len(closes))
	middle := SMA(closes, period)

	for i := range closes {
		if !middle[i].Valid {
			continue
		}
		sd := StdDev(closes[i-period+1 : i+1])
		mid := middle[i].Value
		out[i] = BollingerRow{
			Upper:  models.Some(mid + sd.Value*stdDev),
			Middle: middle[i],
			Lower:  models.Some(mid - sd.Value*stdDev),
		}
	}

	return out
}
