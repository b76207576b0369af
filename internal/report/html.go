package report

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/Alias1177/CoinSignal/models"
)

const reportTitle = "<b>Trading Report</b>"

// RenderHTML formats decision records as a Telegram HTML message. Every
// unavailable value is printed as N/A.
func RenderHTML(records []models.DecisionRecord, generatedAt time.Time) string {
	var sb strings.Builder
	sb.WriteString(reportTitle)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "<i>Generated %s</i>\n", generatedAt.UTC().Format("2006-01-02 15:04 MST"))

	if len(records) == 0 {
		sb.WriteString("\nNo data to report.\n")
		return sb.String()
	}

	for i, rec := range records {
		sb.WriteString("\n")
		writeRecord(&sb, i+1, rec)
	}
	return sb.String()
}

func writeRecord(sb *strings.Builder, n int, rec models.DecisionRecord) {
	name := rec.Asset.Name
	if name == "" {
		name = "Unknown asset"
	}
	symbol := strings.ToUpper(rec.Asset.Symbol)
	if symbol == "" {
		symbol = models.NotAvailable
	}
	signal := string(rec.Signal)
	if signal == "" {
		signal = string(models.SignalHold)
	}
	label := string(rec.SentimentLabel)
	if label == "" {
		label = string(models.SentimentNeutral)
	}

	ind := rec.Indicators
	fmt.Fprintf(sb, "<b>%d. %s (%s)</b>\n", n, html.EscapeString(name), html.EscapeString(symbol))
	fmt.Fprintf(sb, "Signal: <b>%s</b>\n", signal)
	fmt.Fprintf(sb, "Entry Price: %s\n", formatPrice(rec.LatestPrice))
	fmt.Fprintf(sb, "RSI (14): %s\n", ind.RSI.Format(2))
	fmt.Fprintf(sb, "BB Middle (SMA 20): %s\n", formatPrice(ind.Bollinger.Middle))
	fmt.Fprintf(sb, "MACD: Line %s, Signal %s, Hist %s\n",
		ind.MACD.Line.Format(4), ind.MACD.Signal.Format(4), ind.MACD.Histogram.Format(4))
	fmt.Fprintf(sb, "Sentiment: %s (Score: %d, Articles: %d)\n", label, rec.SentimentScore, rec.ArticlesAnalyzed)
	fmt.Fprintf(sb, "Volatility (5m): %s\n", formatPrice(rec.Volatility))
	fmt.Fprintf(sb, "Spread: %s\n", formatPrice(rec.OrderBookSummary.Spread))
	fmt.Fprintf(sb, "Open Interest: %s\n", rec.OpenInterest.Format(2))
	fmt.Fprintf(sb, "Funding Rate: %s\n", rec.FundingRate.Format(6))

	factors := make([]string, len(rec.DecisionFactors))
	for i, f := range rec.DecisionFactors {
		factors[i] = html.EscapeString(f)
	}
	if len(factors) == 0 {
		factors = []string{models.NotAvailable}
	}
	fmt.Fprintf(sb, "Key Decision Factors: %s\n", strings.Join(factors, ", "))
}

// sub-dollar prices need more digits
func formatPrice(f models.Float) string {
	if f.Valid && f.Value != 0 && math.Abs(f.Value) < 1 {
		return f.Format(6)
	}
	return f.Format(2)
}
