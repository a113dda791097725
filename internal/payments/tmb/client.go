// Package tmb reads paid orders from the payments platform's fetch endpoint.
package tmb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"salesdesk/internal/commission"
)

var ErrNotConfigured = errors.New("payments feed URL is not configured")

type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *zap.Logger
}

func NewClient(endpoint, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type fetchResponse struct {
	Data  []commission.Payment `json:"data"`
	Total int                  `json:"total"`
	Error string               `json:"error"`
}

// FetchPayments returns the settled orders paid between start and end
// (inclusive, YYYY-MM-DD).
func (c *Client) FetchPayments(ctx context.Context, start, end string) ([]commission.Payment, error) {
	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse feed URL: %w", err)
	}
	q := u.Query()
	q.Set("data_inicio", start)
	q.Set("data_final", end)
	q.Set("efetivado", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	began := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch payments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch payments: status %d: %s", resp.StatusCode, body)
	}

	var out fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("payments feed: %s", out.Error)
	}

	c.logger.Info("Fetched payments",
		zap.String("start", start),
		zap.String("end", end),
		zap.Int("count", len(out.Data)),
		zap.Int("total", out.Total),
		zap.Duration("took", time.Since(began)))
	return out.Data, nil
}
