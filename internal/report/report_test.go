package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Alias1177/CoinSignal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generated = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func TestRenderHTMLEmpty(t *testing.T) {
	out := RenderHTML(nil, generated)
	assert.Contains(t, out, "<b>Trading Report</b>")
	assert.Contains(t, out, "No data to report.")
}

func TestRenderHTMLRecord(t *testing.T) {
	rec := models.DecisionRecord{
		Asset:       models.Asset{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin <Core>", TradingPair: "BTCUSDT"},
		LatestPrice: models.Some(45123.4567),
		Indicators: models.IndicatorSet{
			RSI:       models.Some(25),
			Bollinger: models.BollingerBands{Middle: models.Some(44000.123)},
			MACD:      models.MACD{Line: models.Some(1.5), Signal: models.Some(1), Histogram: models.Some(0.5)},
		},
		SentimentLabel:   models.SentimentPositive,
		SentimentScore:   1,
		ArticlesAnalyzed: 3,
		OrderBookSummary: models.OrderBookSummary{Spread: models.Some(0.01)},
		Volatility:       models.Some(12.5),
		OpenInterest:     models.Some(81234.5),
		FundingRate:      models.Some(0.0001),
		DecisionFactors:  []string{"RSI < 30 (Oversold)", "Positive sentiment supports BUY"},
		Signal:           models.SignalBuy,
	}

	out := RenderHTML([]models.DecisionRecord{rec}, generated)
	assert.Contains(t, out, "<b>1. Bitcoin &lt;Core&gt; (BTC)</b>")
	assert.Contains(t, out, "Signal: <b>BUY</b>")
	assert.Contains(t, out, "Entry Price: 45123.46")
	assert.Contains(t, out, "RSI (14): 25.00")
	assert.Contains(t, out, "BB Middle (SMA 20): 44000.12")
	assert.Contains(t, out, "MACD: Line 1.5000, Signal 1.0000, Hist 0.5000")
	assert.Contains(t, out, "Sentiment: positive (Score: 1, Articles: 3)")
	assert.Contains(t, out, "Spread: 0.010000")
	assert.Contains(t, out, "Funding Rate: 0.000100")
	assert.Contains(t, out, "Key Decision Factors: RSI &lt; 30 (Oversold), Positive sentiment supports BUY")
	assert.Contains(t, out, "Generated 2024-06-01 09:30 UTC")
}

func TestRenderHTMLDegradedRecord(t *testing.T) {
	rec := models.DegradedRecord(models.Asset{ID: "x", Symbol: "xx", Name: "X"}, "Analysis failed: boom")
	out := RenderHTML([]models.DecisionRecord{rec, {}}, generated)

	assert.Contains(t, out, "Signal: <b>HOLD</b>")
	assert.Contains(t, out, "Entry Price: N/A")
	assert.Contains(t, out, "RSI (14): N/A")
	assert.Contains(t, out, "MACD: Line N/A, Signal N/A, Hist N/A")
	assert.Contains(t, out, "Volatility (5m): N/A")
	assert.Contains(t, out, "Open Interest: N/A")
	assert.Contains(t, out, "Funding Rate: N/A")
	assert.Contains(t, out, "Sentiment: neutral (Score: 0, Articles: 0)")
	assert.Contains(t, out, "<b>2. Unknown asset (N/A)</b>")
	assert.Contains(t, out, "Key Decision Factors: N/A")
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	text := "aaaa\nbbbb\ncccc\n"
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, SplitMessage(text, 10))

	long := strings.Repeat("é", 25)
	chunks := SplitMessage(long, 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestSplitMessageRespectsLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString(strings.Repeat("x", i%97))
		sb.WriteString("\n")
	}
	text := sb.String()

	chunks := SplitMessage(text, MaxMessageLength)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), MaxMessageLength)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

type fakeBot struct {
	sent   []tgbotapi.MessageConfig
	failOn int64
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg := c.(tgbotapi.MessageConfig)
	if msg.ChatID == f.failOn {
		return tgbotapi.Message{}, errors.New("forbidden")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestTelegramSenderSend(t *testing.T) {
	bot := &fakeBot{failOn: 2}
	sender := NewTelegramSender(bot, []int64{1, 2, 3})

	err := sender.Send(context.Background(), "<b>hi</b>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat 2")

	require.Len(t, bot.sent, 2)
	assert.Equal(t, int64(1), bot.sent[0].ChatID)
	assert.Equal(t, int64(3), bot.sent[1].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, bot.sent[0].ParseMode)
}

func TestTelegramSenderCancelled(t *testing.T) {
	bot := &fakeBot{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewTelegramSender(bot, []int64{1}).SendTo(ctx, 1, "text")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, bot.sent)
}
