package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Alias1177/CoinSignal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content, finishReason string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "Return only one word")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":%q}]}`,
			content, finishReason)
	}))
	t.Cleanup(srv.Close)

	return NewClient(ClientOptions{APIKey: "sk-test", Model: "test-model", BaseURL: srv.URL + "/v1"})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		reply string
		want  models.SentimentLabel
	}{
		{"positive", models.SentimentPositive},
		{"Positive.", models.SentimentPositive},
		{" NEGATIVE ", models.SentimentNegative},
		{"'neutral'", models.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			client := chatServer(t, tt.reply, "stop")
			got, err := client.Classify(context.Background(), "Bitcoin surges")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyUnexpectedLabel(t *testing.T) {
	client := chatServer(t, "bullish", "stop")
	_, err := client.Classify(context.Background(), "Bitcoin surges")
	assert.ErrorIs(t, err, ErrUnexpectedLabel)
}

func TestClassifyBlocked(t *testing.T) {
	client := chatServer(t, "", "content_filter")
	_, err := client.Classify(context.Background(), "something")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestClassifyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	client := NewClient(ClientOptions{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	_, err := client.Classify(context.Background(), "text")
	assert.Error(t, err)
}

func TestClassifyStalledServerTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := NewClient(ClientOptions{APIKey: "sk-test", BaseURL: srv.URL + "/v1", RequestTimeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := client.Classify(context.Background(), "text")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFormatSentimentPromptTruncates(t *testing.T) {
	prompt := FormatSentimentPrompt(strings.Repeat("a", 5000))
	assert.Less(t, len(prompt), 4200)
	assert.True(t, strings.HasSuffix(prompt, "\""))
}
