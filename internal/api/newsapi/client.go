package newsapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpClient "github.com/Alias1177/CoinSignal/internal/platform/http"
	"github.com/Alias1177/CoinSignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://newsapi.org/v2"
	snippetRunes   = 200
)

// Client is the NewsAPI client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new NewsAPI client
type ClientOptions struct {
	BaseURL         string
	APIKey          string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new NewsAPI client
func NewClient(options ClientOptions) *Client {
	baseURL := strings.TrimSuffix(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
			Headers:         map[string]string{"X-Api-Key": options.APIKey},
		}),
		logger: log.With().Str("component", "newsapi_client").Logger(),
	}
}

type everythingResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// GetNews searches recent English articles for keywords.
// Empty keywords return no articles without calling the API.
func (c *Client) GetNews(ctx context.Context, keywords string, limit int) ([]models.NewsArticle, error) {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" || limit <= 0 {
		return nil, nil
	}

	params := url.Values{
		"q":        {keywords},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {strconv.Itoa(limit)},
	}

	c.logger.Debug().Str("keywords", keywords).Int("limit", limit).Msg("Fetching news")

	var resp everythingResponse
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/everything", params, &resp); err != nil {
		return nil, fmt.Errorf("everything: %w", err)
	}
	if resp.Status != "" && resp.Status != "ok" {
		return nil, fmt.Errorf("NewsAPI error %s: %s", resp.Code, resp.Message)
	}

	articles := make([]models.NewsArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		snippet := a.Description
		if snippet == "" {
			snippet = truncateRunes(a.Content, snippetRunes)
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)

		articles = append(articles, models.NewsArticle{
			Title:       strings.TrimSpace(a.Title),
			Snippet:     strings.TrimSpace(snippet),
			Source:      a.Source.Name,
			PublishedAt: published,
			URL:         a.URL,
		})
		if len(articles) == limit {
			break
		}
	}

	c.logger.Debug().Str("keywords", keywords).Int("count", len(articles)).Msg("Fetched news")
	return articles, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
