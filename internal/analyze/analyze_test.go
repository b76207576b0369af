package analyze

import (
	"testing"

	"github.com/Alias1177/CoinSignal/models"
)

var (
	factorOversold   = OversoldFactor(DefaultOversold)
	factorOverbought = OverboughtFactor(DefaultOverbought)
)

func snapshot(rsi models.Float, line, signal models.Float, sentiment models.SentimentLabel) Snapshot {
	return Snapshot{
		Indicators: models.IndicatorSet{
			RSI:  rsi,
			MACD: models.MACD{Line: line, Signal: signal},
		},
		Sentiment: sentiment,
	}
}

func TestDetermineTradeSignal(t *testing.T) {
	na := models.Unavailable
	some := models.Some

	tests := []struct {
		name     string
		snapshot Snapshot
		signal   models.Signal
		factors  []string
	}{
		{
			name:     "oversold with positive news",
			snapshot: snapshot(some(25), na, na, models.SentimentPositive),
			signal:   models.SignalBuy,
			factors:  []string{factorOversold, FactorPositiveBuy},
		},
		{
			name:     "oversold with negative news",
			snapshot: snapshot(some(25), na, na, models.SentimentNegative),
			signal:   models.SignalHold,
			factors:  []string{factorOversold, FactorNegativeCaution},
		},
		{
			name:     "oversold with neutral news",
			snapshot: snapshot(some(25), na, na, models.SentimentNeutral),
			signal:   models.SignalConsiderBuy,
			factors:  []string{factorOversold, FactorNeutralOversold},
		},
		{
			name:     "overbought with negative news",
			snapshot: snapshot(some(75), na, na, models.SentimentNegative),
			signal:   models.SignalSell,
			factors:  []string{factorOverbought, FactorNegativeSell},
		},
		{
			name:     "overbought with positive news",
			snapshot: snapshot(some(75), na, na, models.SentimentPositive),
			signal:   models.SignalHold,
			factors:  []string{factorOverbought, FactorPositiveCaution},
		},
		{
			name:     "overbought with neutral news",
			snapshot: snapshot(some(75), na, na, models.SentimentNeutral),
			signal:   models.SignalConsiderSell,
			factors:  []string{factorOverbought, FactorNeutralOverbought},
		},
		{
			name:     "bullish MACD with neutral RSI",
			snapshot: snapshot(some(50), some(1.5), some(1.0), models.SentimentNeutral),
			signal:   models.SignalConsiderBuy,
			factors:  []string{FactorMACDBullish},
		},
		{
			name:     "bearish MACD without RSI",
			snapshot: snapshot(na, some(-2), some(-1), models.SentimentPositive),
			signal:   models.SignalConsiderSell,
			factors:  []string{FactorMACDBearish},
		},
		{
			name:     "RSI suppresses MACD",
			snapshot: snapshot(some(75), some(2), some(1), models.SentimentNegative),
			signal:   models.SignalSell,
			factors:  []string{factorOverbought, FactorNegativeSell},
		},
		{
			name:     "RSI hold is not upgraded by MACD",
			snapshot: snapshot(some(20), some(2), some(1), models.SentimentNegative),
			signal:   models.SignalHold,
			factors:  []string{factorOversold, FactorNegativeCaution},
		},
		{
			name:     "equal MACD lines",
			snapshot: snapshot(some(50), some(1), some(1), models.SentimentNeutral),
			signal:   models.SignalHold,
			factors:  []string{FactorNoSignal},
		},
		{
			name:     "MACD signal unavailable",
			snapshot: snapshot(some(50), some(1), na, models.SentimentPositive),
			signal:   models.SignalHold,
			factors:  []string{FactorNoSignal},
		},
		{
			name:     "everything unavailable",
			snapshot: Snapshot{},
			signal:   models.SignalHold,
			factors:  []string{FactorNoSignal},
		},
		{
			name:     "thresholds are exclusive",
			snapshot: snapshot(some(30), na, na, models.SentimentPositive),
			signal:   models.SignalHold,
			factors:  []string{FactorNoSignal},
		},
	}

	engine := NewEngine(DefaultOversold, DefaultOverbought)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.DetermineTradeSignal(tt.snapshot)
			if got.Signal != tt.signal {
				t.Errorf("DetermineTradeSignal() signal = %v, want %v", got.Signal, tt.signal)
			}
			if len(got.Factors) != len(tt.factors) {
				t.Fatalf("DetermineTradeSignal() factors = %v, want %v", got.Factors, tt.factors)
			}
			for i := range tt.factors {
				if got.Factors[i] != tt.factors[i] {
					t.Errorf("factor[%d] = %q, want %q", i, got.Factors[i], tt.factors[i])
				}
			}
		})
	}
}

func TestDetermineTradeSignalIsIdempotent(t *testing.T) {
	engine := NewEngine(DefaultOversold, DefaultOverbought)
	s := snapshot(models.Some(25), models.Some(1), models.Some(0.5), models.SentimentPositive)

	first := engine.DetermineTradeSignal(s)
	second := engine.DetermineTradeSignal(s)
	if first.Signal != second.Signal || len(first.Factors) != len(second.Factors) {
		t.Fatalf("decisions differ: %+v vs %+v", first, second)
	}
	for i := range first.Factors {
		if first.Factors[i] != second.Factors[i] {
			t.Errorf("factor[%d] differs: %q vs %q", i, first.Factors[i], second.Factors[i])
		}
	}
}

func TestCustomThresholds(t *testing.T) {
	engine := NewEngine(40, 60)
	got := engine.DetermineTradeSignal(snapshot(models.Some(35), models.Unavailable, models.Unavailable, models.SentimentNeutral))
	if got.Signal != models.SignalConsiderBuy {
		t.Errorf("signal = %v, want %v", got.Signal, models.SignalConsiderBuy)
	}
	if got.Factors[0] != "RSI < 40 (Oversold)" {
		t.Errorf("factor = %q", got.Factors[0])
	}
}
