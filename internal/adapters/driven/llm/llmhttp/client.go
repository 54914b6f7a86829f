// Package llmhttp is the JSON-over-HTTP plumbing shared by the model adapters.
package llmhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is quoted back.
const maxErrorBody = 300

// Client posts JSON to one provider with fixed headers.
type Client struct {
	provider string
	http     *http.Client
	headers  map[string]string
}

// New creates a client. headers are sent on every request.
func New(provider string, timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		provider: provider,
		http:     &http.Client{Timeout: timeout},
		headers:  headers,
	}
}

// PostJSON sends in as JSON and decodes a 200 response into out.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// Get issues a GET and discards a 200 body. Adapters use it for Ping.
func (c *Client) Get(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", c.provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, StatusError(c.provider, resp.StatusCode, data)
	}
	return data, nil
}

// StatusError maps a non-200 response. 429 wraps domain.ErrRateLimited and
// rejected credentials wrap domain.ErrLLMUnavailable.
func StatusError(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %s", provider, domain.ErrRateLimited, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w: credentials rejected (status %d)", provider, domain.ErrLLMUnavailable, status)
	default:
		return fmt.Errorf("%s: status %d: %s", provider, status, msg)
	}
}
