package calculate

import "github.com/Alias1177/CoinSignal/models"

// EMA returns the exponential moving average of a series that may carry
// unavailable leading points. The first defined value is the SMA of the
// first period defined inputs.
func EMA(values []models.Float, period int) []models.Float {
	out := make([]models.Float, len(values))
	if period <= 0 {
		return out
	}

	start := 0
	for start < len(values) && !values[start].Valid {
		start++
	}
	if len(values)-start < period {
		return out
	}

	// Calculate simple moving average for the initial value
	var sum float64
	for i := start; i < start+period; i++ {
		sum += values[i].Value
	}
	ema := sum / float64(period)
	seed := start + period - 1
	out[seed] = models.Some(ema)

	// Multiplier for weighting the EMA
	multiplier := 2.0 / float64(period+1)
	for i := seed + 1; i < len(values); i++ {
		if !values[i].Valid {
			break
		}
		ema = (values[i].Value-ema)*multiplier + ema
		out[i] = models.Some(ema)
	}

	return out
}

func floats(values []float64) []models.Float {
	out := make([]models.Float, len(values))
	for i, v := range values {
		out[i] = models.Some(v)
	}
	return out
}
