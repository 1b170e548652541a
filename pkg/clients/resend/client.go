package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.resend.com"

// Email is a single transactional message.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// APIError is a non-success response from the Resend API.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error from Resend API (status %d): %s %s", e.StatusCode, e.Name, e.Message)
}

// Client defines the interface for sending email through Resend
type Client interface {
	Send(ctx context.Context, email Email) (string, error)
}

type clientImpl struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Resend client.
type Option func(*clientImpl)

// WithBaseURL points the client at a different API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *clientImpl) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientImpl) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientImpl) { c.logger = logger }
}

// NewClient creates a new Resend client. With an empty API key the client
// only logs what it would have sent, which keeps local development offline.
func NewClient(apiKey string, opts ...Option) Client {
	c := &clientImpl{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers the email and returns the provider's message ID.
func (c *clientImpl) Send(ctx context.Context, email Email) (string, error) {
	if c.apiKey == "" {
		c.logger.Warn("RESEND_API_KEY not set, email not sent",
			zap.Strings("to", email.To),
			zap.String("subject", email.Subject))
		return "", nil
	}

	jsonPayload, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending email: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(body)}
		var problem struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &problem) == nil && problem.Message != "" {
			apiErr.Name = problem.Name
			apiErr.Message = problem.Message
		}
		return "", apiErr
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	c.logger.Info("Sent email", zap.String("id", response.ID), zap.String("subject", email.Subject))
	return response.ID, nil
}
