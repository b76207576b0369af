package assets

import (
	"strings"

	"github.com/Alias1177/CoinSignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// QuoteAsset is appended to the symbol to form the exchange pair
const QuoteAsset = "USDT"

// Resolver turns ranked provider records into the working asset set.
type Resolver struct {
	logger zerolog.Logger
}

// NewResolver creates a resolver
func NewResolver() *Resolver {
	return &Resolver{
		logger: log.With().Str("component", "asset_resolver").Logger(),
	}
}

// Resolve validates, normalises and de-duplicates raw records, preserving
// ranking order. Invalid records are dropped and logged.
func (r *Resolver) Resolve(raw []models.RawAsset) []models.Asset {
	out := make([]models.Asset, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for i, rec := range raw {
		id := strings.TrimSpace(rec.ID)
		symbol := strings.ToLower(strings.TrimSpace(rec.Symbol))
		name := strings.TrimSpace(rec.Name)

		if reason := missingField(id, symbol, name); reason != "" {
			r.logger.Warn().Int("index", i).Str("id", id).Str("reason", reason).Msg("Dropping asset record")
			continue
		}
		if _, dup := seen[id]; dup {
			r.logger.Debug().Str("id", id).Msg("Dropping duplicate asset record")
			continue
		}
		seen[id] = struct{}{}

		out = append(out, models.Asset{
			ID:          id,
			Symbol:      symbol,
			Name:        name,
			TradingPair: TradingPair(symbol),
		})
	}

	return out
}

// TradingPair builds the exchange symbol for a base asset.
func TradingPair(symbol string) string {
	return strings.ToUpper(symbol) + QuoteAsset
}

func missingField(id, symbol, name string) string {
	switch {
	case id == "":
		return "missing id"
	case symbol == "":
		return "missing symbol"
	case name == "":
		return "missing name"
	}
	return ""
}
