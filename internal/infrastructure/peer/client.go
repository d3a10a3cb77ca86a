package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrInvalidBody      = errors.New("invalid response body")
)

// maxBodySize caps how much of a peer response is read.
const maxBodySize = 1 << 20

// Client queries the peer service over HTTP.
type Client struct {
	http *http.Client
}

// NewClient uses httpClient when given, otherwise a client with the
// given timeout on the default transport. A zero timeout means none.
func NewClient(httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{http: httpClient}
}

// GetJSON issues a GET to url and decodes a JSON object body.
// Any non-2xx status is an error.
func (c *Client) GetJSON(ctx context.Context, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: null", ErrInvalidBody)
	}

	return out, nil
}
