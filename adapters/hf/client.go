package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// DefaultBaseURL is the hosted inference endpoint root.
const DefaultBaseURL = "https://api-inference.huggingface.co"

// DefaultModel is the summarization model used when none is configured.
const DefaultModel = "facebook/bart-large-cnn"

// Client calls a hosted summarization model on the Hugging Face
// inference API using a bearer token.
type Client struct {
	BaseURL    string
	Token      string
	Model      string
	HTTPClient *http.Client

	// MaxRetries bounds warm-up retries when the hosted model returns
	// 503 while it loads.
	MaxRetries int
}

// Config carries the client settings from the application config.
type Config struct {
	BaseURL string
	Token   string
	Model   string
	Timeout time.Duration
}

// NewClient creates a summarization client. Zero config fields fall back
// to the hosted defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		BaseURL:    cfg.BaseURL,
		Token:      cfg.Token,
		Model:      cfg.Model,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		MaxRetries: 3,
	}
}

type summarizeRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters summarizeParameters `json:"parameters"`
	Options    summarizeOptions    `json:"options"`
}

type summarizeParameters struct {
	MaxLength int `json:"max_length,omitempty"`
	MinLength int `json:"min_length,omitempty"`
}

type summarizeOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type summarizeResponse struct {
	SummaryText string `json:"summary_text"`
}

// modelError is the API's error envelope; EstimatedTime is set while the
// model is still loading.
type modelError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Summarize sends the text to the configured model and returns the
// generated summary. 503 warm-up responses are retried with the
// advertised delay, bounded by the context.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if c.Token == "" {
		return "", fmt.Errorf("summarization token not configured")
	}

	body, err := json.Marshal(summarizeRequest{
		Inputs:     text,
		Parameters: summarizeParameters{MaxLength: 180, MinLength: 40},
		Options:    summarizeOptions{WaitForModel: false},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.BaseURL, c.Model)
	log.Printf("[HFClient] Summarization request - model=%s, inputLength=%d", c.Model, len(text))

	for attempt := 0; ; attempt++ {
		summary, retryAfter, err := c.doRequest(ctx, url, body)
		if err == nil {
			return summary, nil
		}
		if retryAfter <= 0 || attempt >= c.MaxRetries {
			return "", err
		}

		log.Printf("[HFClient] Model warming up, retrying in %s (attempt %d/%d)", retryAfter, attempt+1, c.MaxRetries)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryAfter):
		}
	}
}

// doRequest performs one API call. A positive retryAfter signals a
// warm-up 503 worth retrying.
func (c *Client) doRequest(ctx context.Context, url string, body []byte) (summary string, retryAfter time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to call inference API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		var me modelError
		if json.Unmarshal(raw, &me) == nil && me.EstimatedTime > 0 {
			wait := time.Duration(me.EstimatedTime * float64(time.Second))
			if wait > 30*time.Second {
				wait = 30 * time.Second
			}
			return "", wait, fmt.Errorf("model loading: %s", me.Error)
		}
		return "", 0, fmt.Errorf("inference API unavailable: %s", string(raw))
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("inference API error (status %d): %s", resp.StatusCode, string(raw))
	}

	var out []summarizeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", 0, fmt.Errorf("failed to parse inference response: %w\nRaw response: %s", err, string(raw))
	}
	if len(out) == 0 || out[0].SummaryText == "" {
		return "", 0, fmt.Errorf("empty summary in inference response: %s", string(raw))
	}
	return out[0].SummaryText, 0, nil
}
