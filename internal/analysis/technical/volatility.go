package technical

import (
	"time"

	"github.com/Alias1177/CoinSignal/internal/calculate"
	"github.com/Alias1177/CoinSignal/internal/utils"
	"github.com/Alias1177/CoinSignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultVolatilityWindow is the trailing window trades are drawn from
const DefaultVolatilityWindow = 300 * time.Second

// VolatilityEstimator measures short-term price dispersion on a trade tape.
type VolatilityEstimator struct {
	Window time.Duration
	Now    func() time.Time
	logger zerolog.Logger
}

// NewVolatilityEstimator creates an estimator over the given window.
func NewVolatilityEstimator(window time.Duration) *VolatilityEstimator {
	if window <= 0 {
		window = DefaultVolatilityWindow
	}
	return &VolatilityEstimator{
		Window: window,
		Now:    time.Now,
		logger: log.With().Str("component", "volatility").Logger(),
	}
}

// Estimate returns the population standard deviation of trade prices inside
// the window ending now. Trades with an unparsable price or time are
// skipped. Fewer than two usable trades yields unavailable.
func (e *VolatilityEstimator) Estimate(trades []models.Trade) models.Float {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	cutoff := now().Add(-e.Window).UnixMilli()

	prices := make([]float64, 0, len(trades))
	skipped := 0
	for _, trade := range trades {
		price, ok := utils.ParseFloat(trade.Price)
		if !ok || trade.Time <= 0 {
			skipped++
			continue
		}
		if trade.Time < cutoff {
			continue
		}
		prices = append(prices, price)
	}

	if skipped > 0 {
		e.logger.Debug().Int("skipped", skipped).Msg("Skipped malformed trades")
	}
	if len(prices) < 2 {
		return models.Unavailable
	}

	return calculate.StdDev(prices)
}
