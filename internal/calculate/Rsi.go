package calculate

import "github.com/Alias1177/CoinSignal/models"

// RSI returns Wilder's relative strength index series. The first value is
// defined at index period.
func RSI(closes []float64, period int) []models.Float {
	out := make([]models.Float, len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	var gains, losses float64
	// Calculate initial averages
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	// Wilder smoothing for the rest of the data
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}

	return out
}

// no losses, flat windows included, reads as 100
func rsiValue(avgGain, avgLoss float64) models.Float {
	if avgLoss == 0 {
		return models.Some(100)
	}

	rs := avgGain / avgLoss
	return models.Some(100.0 - (100.0 / (1.0 + rs)))
}
