package calculate

import (
	"math"

	"github.com/Alias1177/CoinSignal/models"
)

// calculateAverage calculates simple average
func calculateAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

// SMA returns the simple moving average series of values. Positions before
// period-1 are unavailable.
func SMA(values []float64, period int) []models.Float {
	out := make([]models.Float, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = models.Some(sum / float64(period))
		}
	}
	return out
}

// StdDev is the population standard deviation of values.
func StdDev(values []float64) models.Float {
	if len(values) == 0 {
		return models.Unavailable
	}

	mean := calculateAverage(values)
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return models.Some(math.Sqrt(variance / float64(len(values))))
}
