// Package mood talks to the language-model proxy that turns page content or
// a mood label into a song recommendation.
package mood

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hxnx/synesth/internal/music"
)

const (
	DefaultModel = "gpt-4o-mini"

	contentMaxTokens   = 200
	contentTemperature = 0.8
	moodMaxTokens      = 150
	moodTemperature    = 1.0

	maxErrorBody = 64 << 10
)

// Result is what the model recommends before the song is resolved.
type Result struct {
	Mood  string     `json:"mood"`
	Emoji string     `json:"emoji"`
	Song  music.Song `json:"song"`
}

// Client calls {BaseURL}/api/analyze. It never retries.
type Client struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client

	logger logrus.FieldLogger
	pick   func(n int) int
}

func NewClient(baseURL, model string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     logger,
		pick:       rand.Intn,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// FromContent infers a mood from page text. The text is cut to 2000
// characters and, when pageURL is absolute, prefixed with its host and path.
func (c *Client) FromContent(ctx context.Context, text, pageURL string) (Result, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: contentSystemPrompt},
			{Role: "user", Content: contentContext(text, pageURL)},
		},
		MaxTokens:   contentMaxTokens,
		Temperature: contentTemperature,
	})
	if err != nil {
		return Result{}, err
	}
	return parseResult(content)
}

// FromMood recommends a song for a mood label. avoid is passed to the model
// as a hint only; nothing filters the answer against it.
func (c *Client) FromMood(ctx context.Context, label string, avoid []string) (Result, error) {
	variant := c.pick(len(moodPrompts))

	content, err := c.complete(ctx, chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: moodSystemPrompt},
			{Role: "user", Content: buildMoodPrompt(variant, label, avoid)},
		},
		MaxTokens:   moodMaxTokens,
		Temperature: moodTemperature,
	})
	if err != nil {
		return Result{}, err
	}
	return parseResult(content)
}

func (c *Client) complete(ctx context.Context, body chatRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/analyze", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	started := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return "", &ServiceError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Debug("recommendation call finished")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", serviceErrorFrom(resp)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return decoded.Choices[0].Message.Content, nil
}

func serviceErrorFrom(resp *http.Response) *ServiceError {
	message := fmt.Sprintf("recommendation API error: %d", resp.StatusCode)

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var decoded errorResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error.Message != "" {
		message = decoded.Error.Message
	}

	return &ServiceError{Status: resp.StatusCode, Message: message}
}
