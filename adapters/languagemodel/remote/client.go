// Package remote scores words with a language model served over HTTP.
//
// The service receives
//
//	POST {base}/logprobs {"model": "...", "texts": [["w0", "w1"], ...], "index": 1}
//
// and answers {"log_probs": [-2.3, -4.1]} with one natural-log probability per text.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"textattack/domain/core"
	"textattack/domain/text"
	"textattack/ports"
)

// Config configures the scoring client
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client implements ports.LanguageModel against a remote scoring service.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	http    *http.Client
}

var _ ports.LanguageModel = (*Client)(nil)

// NewClient creates a scoring client based on config
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("%w: missing language model endpoint", core.ErrInvalidConfiguration)
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  config.APIKey,
		Model:   config.Model,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type scoreRequest struct {
	Model string     `json:"model,omitempty"`
	Texts [][]string `json:"texts"`
	Index int        `json:"index"`
}

type scoreResponse struct {
	LogProbs []float64 `json:"log_probs"`
	Error    string    `json:"error,omitempty"`
}

// LogProbsAt returns whatever the service reports; the caller checks the arity.
// Transport failures and non-2xx answers are resource errors.
func (c *Client) LogProbsAt(ctx context.Context, texts []*text.AttackedText, index int) ([]float64, error) {
	body := scoreRequest{Model: c.Model, Index: index, Texts: make([][]string, len(texts))}
	for i, t := range texts {
		body.Texts[i] = t.Words()
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/logprobs", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, core.NewResourceError("language model", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewResourceError("language model", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, core.NewResourceError("language model", fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(respRaw))))
	}

	var decoded scoreResponse
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return nil, core.NewResourceError("language model", fmt.Errorf("unmarshal response: %w", err))
	}
	if decoded.Error != "" {
		return nil, core.NewResourceError("language model", fmt.Errorf("service error: %s", decoded.Error))
	}
	return decoded.LogProbs, nil
}
