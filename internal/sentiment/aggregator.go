package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Alias1177/CoinSignal/internal/api/openai"
	"github.com/Alias1177/CoinSignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Defaults applied by NewAggregator
const (
	DefaultMaxArticles = 5
	DefaultCallTimeout = 10 * time.Second
)

// Fallback reasons reported to the observer
const (
	ReasonError      = "error"
	ReasonBlocked    = "blocked"
	ReasonUnexpected = "unexpected_label"
	ReasonPanic      = "panic"
	ReasonTimeout    = "timeout"
)

// Observer is told whenever a classification was replaced by neutral.
type Observer interface {
	ClassifierFallback(reason string)
}

type noopObserver struct{}

func (noopObserver) ClassifierFallback(string) {}

// Options bounds the work done per asset.
type Options struct {
	MaxArticles int
	// CallTimeout bounds the news fetch and each classification separately.
	CallTimeout time.Duration
}

// Aggregator classifies an asset's recent news and reduces the labels.
type Aggregator struct {
	news        models.NewsClient
	classifier  models.SentimentClassifier
	maxArticles int
	parallelism int
	callTimeout time.Duration
	observer    Observer
	logger      zerolog.Logger
}

// NewAggregator creates a sentiment aggregator. A nil observer is allowed.
func NewAggregator(news models.NewsClient, classifier models.SentimentClassifier, opts Options, observer Observer) *Aggregator {
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = DefaultMaxArticles
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Aggregator{
		news:        news,
		classifier:  classifier,
		maxArticles: opts.MaxArticles,
		parallelism: opts.MaxArticles,
		callTimeout: opts.CallTimeout,
		observer:    observer,
		logger:      log.With().Str("component", "sentiment").Logger(),
	}
}

// Aggregate never fails: news errors give a neutral result with no
// articles, classifier failures count as neutral labels.
func (a *Aggregator) Aggregate(ctx context.Context, asset models.Asset) models.SentimentResult {
	logger := a.logger.With().Str("asset", asset.ID).Logger()

	newsCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	articles, err := a.news.GetNews(newsCtx, asset.Name, a.maxArticles)
	cancel()
	if err != nil {
		logger.Warn().Err(err).Msg("News unavailable, sentiment neutral")
		return models.NeutralSentiment()
	}
	if len(articles) > a.maxArticles {
		articles = articles[:a.maxArticles]
	}

	labels := make([]models.SentimentLabel, len(articles))
	var g errgroup.Group
	g.SetLimit(a.parallelism)
	for i, article := range articles {
		text := strings.TrimSpace(article.Text())
		if text == "" {
			labels[i] = models.SentimentNeutral
			continue
		}
		g.Go(func() error {
			labels[i] = a.classify(ctx, logger, text)
			return nil
		})
	}
	_ = g.Wait()

	result := Reduce(labels)
	result.ArticlesAnalyzed = len(articles)

	logger.Debug().
		Str("label", string(result.Label)).
		Int("score", result.Score).
		Int("articles", result.ArticlesAnalyzed).
		Msg("Sentiment aggregated")
	return result
}

func (a *Aggregator) classify(ctx context.Context, logger zerolog.Logger, text string) (label models.SentimentLabel) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Classifier panicked")
			a.observer.ClassifierFallback(ReasonPanic)
			label = models.SentimentNeutral
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	label, err := a.classifier.Classify(callCtx, text)
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}
	if err == nil {
		if parsed, ok := models.ParseSentimentLabel(string(label)); ok {
			return parsed
		}
		err = fmt.Errorf("%w: %q", openai.ErrUnexpectedLabel, label)
	}

	reason := fallbackReason(err)
	a.observer.ClassifierFallback(reason)
	logger.Warn().Err(err).Str("reason", reason).Msg("Classification failed, using neutral")
	return models.SentimentNeutral
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, openai.ErrBlocked):
		return ReasonBlocked
	case errors.Is(err, openai.ErrUnexpectedLabel):
		return ReasonUnexpected
	default:
		return ReasonError
	}
}

// Reduce counts positive against negative labels. Neutral labels do not
// count; a tie, including no labels at all, is neutral with score 0.
func Reduce(labels []models.SentimentLabel) models.SentimentResult {
	var positive, negative int
	for _, l := range labels {
		switch l {
		case models.SentimentPositive:
			positive++
		case models.SentimentNegative:
			negative++
		}
	}

	result := models.SentimentResult{Label: models.SentimentNeutral, ArticlesAnalyzed: len(labels)}
	switch {
	case positive > negative:
		result.Label, result.Score = models.SentimentPositive, 1
	case negative > positive:
		result.Label, result.Score = models.SentimentNegative, -1
	}
	return result
}
