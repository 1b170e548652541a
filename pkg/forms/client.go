package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client posts forms to the waitlist API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Submit implements Submitter. Non-2xx replies are not errors; a reply body
// that is not JSON is.
func (c *Client) Submit(ctx context.Context, path string, body interface{}) (int, Reply, error) {
	jsonPayload, err := json.Marshal(body)
	if err != nil {
		return 0, Reply{}, fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonPayload))
	if err != nil {
		return 0, Reply{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, Reply{}, fmt.Errorf("error submitting form: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, Reply{}, fmt.Errorf("error reading response: %w", err)
	}

	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return 0, Reply{}, fmt.Errorf("error parsing response: %w", err)
	}

	return resp.StatusCode, reply, nil
}
