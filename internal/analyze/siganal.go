package analyze

import (
	"fmt"

	"github.com/Alias1177/CoinSignal/models"
)

// Decision factors
const (
	FactorPositiveBuy       = "Positive sentiment supports BUY"
	FactorNegativeCaution   = "Negative sentiment suggests caution despite oversold RSI"
	FactorNeutralOversold   = "Neutral sentiment, RSI oversold"
	FactorNegativeSell      = "Negative sentiment supports SELL"
	FactorPositiveCaution   = "Positive sentiment suggests caution despite overbought RSI"
	FactorNeutralOverbought = "Neutral sentiment, RSI overbought"
	FactorMACDBullish       = "MACD line crossed above signal line (bullish crossover)"
	FactorMACDBearish       = "MACD line crossed below signal line (bearish crossover)"
	FactorNoSignal          = "No strong signal from technical or sentiment indicators"
)

// OversoldFactor and OverboughtFactor name the threshold that fired.
func OversoldFactor(threshold float64) string {
	return fmt.Sprintf("RSI < %g (Oversold)", threshold)
}

func OverboughtFactor(threshold float64) string {
	return fmt.Sprintf("RSI > %g (Overbought)", threshold)
}

// Default RSI thresholds
const (
	DefaultOversold   = 30.0
	DefaultOverbought = 70.0
)

// Snapshot is the immutable input of one decision. Volatility is reported
// on the record but never drives the signal.
type Snapshot struct {
	Indicators models.IndicatorSet
	Sentiment  models.SentimentLabel
}

// Decision is the output of one decision
type Decision struct {
	Signal  models.Signal
	Factors []string
}

// evaluation carries the signal between rules
type evaluation struct {
	snapshot Snapshot
	signal   models.Signal
	factors  []string
	rsiFired bool
}

func (e *evaluation) add(factors ...string) {
	e.factors = append(e.factors, factors...)
}

type rule func(e *Engine, ev *evaluation)

// Engine applies an ordered list of rules. It holds only thresholds and
// is safe for concurrent use.
type Engine struct {
	Oversold   float64
	Overbought float64
	rules      []rule
}

// NewEngine creates an engine with the given RSI thresholds.
func NewEngine(oversold, overbought float64) *Engine {
	return &Engine{
		Oversold:   oversold,
		Overbought: overbought,
		rules:      []rule{rsiRule, macdRule, fallbackRule},
	}
}

// DetermineTradeSignal evaluates the rules against the snapshot. It
// performs no I/O and cannot fail; absent inputs skip their rule.
func (e *Engine) DetermineTradeSignal(s Snapshot) Decision {
	ev := &evaluation{snapshot: s, signal: models.SignalHold}
	for _, r := range e.rules {
		r(e, ev)
	}
	return Decision{Signal: ev.signal, Factors: ev.factors}
}

// rsiRule handles oversold and overbought RSI, qualified by sentiment.
func rsiRule(e *Engine, ev *evaluation) {
	rsi, ok := ev.snapshot.Indicators.RSI.Get()
	if !ok {
		return
	}

	sentiment := ev.snapshot.Sentiment
	switch {
	case rsi < e.Oversold:
		ev.rsiFired = true
		ev.add(OversoldFactor(e.Oversold))
		switch sentiment {
		case models.SentimentPositive:
			ev.signal = models.SignalBuy
			ev.add(FactorPositiveBuy)
		case models.SentimentNegative:
			ev.signal = models.SignalHold
			ev.add(FactorNegativeCaution)
		default:
			ev.signal = models.SignalConsiderBuy
			ev.add(FactorNeutralOversold)
		}
	case rsi > e.Overbought:
		ev.rsiFired = true
		ev.add(OverboughtFactor(e.Overbought))
		switch sentiment {
		case models.SentimentNegative:
			ev.signal = models.SignalSell
			ev.add(FactorNegativeSell)
		case models.SentimentPositive:
			ev.signal = models.SignalHold
			ev.add(FactorPositiveCaution)
		default:
			ev.signal = models.SignalConsiderSell
			ev.add(FactorNeutralOverbought)
		}
	}
}

// macdRule only runs when no RSI rule fired, and only upgrades HOLD.
func macdRule(_ *Engine, ev *evaluation) {
	if ev.rsiFired {
		return
	}
	line, okLine := ev.snapshot.Indicators.MACD.Line.Get()
	signal, okSignal := ev.snapshot.Indicators.MACD.Signal.Get()
	if !okLine || !okSignal {
		return
	}

	switch {
	case line > signal:
		ev.add(FactorMACDBullish)
		if ev.signal == models.SignalHold {
			ev.signal = models.SignalConsiderBuy
		}
	case line < signal:
		ev.add(FactorMACDBearish)
		if ev.signal == models.SignalHold {
			ev.signal = models.SignalConsiderSell
		}
	}
}

func fallbackRule(_ *Engine, ev *evaluation) {
	if len(ev.factors) == 0 {
		ev.add(FactorNoSignal)
	}
}
