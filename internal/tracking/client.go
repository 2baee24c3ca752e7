// Package tracking reports quiz completions to the external campaign
// tracking service.
package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"awareness-quiz-service/internal/domain"
)

// Client posts completion events to {baseURL}/tracking/complete. Any
// transport failure or non-2xx status is reported as
// domain.ErrCompletionTransport so callers can offer a retry; the client
// itself never retries, to keep completion events single-shot per user
// action.
type Client struct {
	baseURL string
	http    *http.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) ReportCompletion(ctx context.Context, event domain.CompletionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal completion: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tracking/complete", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCompletionTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCompletionTransport, err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("%w: %s", domain.ErrCompletionTransport, res.Status)
	}
	return nil
}
