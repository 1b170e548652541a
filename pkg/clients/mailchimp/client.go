package mailchimp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"multiball-waitlist/pkg/utils"
)

const defaultDataCenter = "us5"

// memberExistsTitle is the problem title Mailchimp returns when the address
// is already a member of the audience.
const memberExistsTitle = "Member Exists"

// ErrMemberExists is returned by UpsertMember when the address is already on the list.
var ErrMemberExists = errors.New("member already exists")

// APIError is a non-success response from the Mailchimp API.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("error from Mailchimp API (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("error from Mailchimp API (status %d): %s: %s", e.StatusCode, e.Title, e.Detail)
}

// MergeFields are the audience merge tags we populate.
type MergeFields struct {
	FirstName string `json:"FNAME"`
	LastName  string `json:"LNAME"`
}

// Member is the body of an add-member request.
type Member struct {
	EmailAddress string       `json:"email_address"`
	Status       string       `json:"status"`
	Tags         []string     `json:"tags,omitempty"`
	MergeFields  *MergeFields `json:"merge_fields,omitempty"`
}

// Client defines the interface for interacting with the Mailchimp Marketing API
type Client interface {
	UpsertMember(ctx context.Context, member Member) error
	AddTags(ctx context.Context, email string, tags ...string) error
}

type clientImpl struct {
	apiKey     string
	audienceID string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Mailchimp client.
type Option func(*clientImpl)

// WithBaseURL points the client at a different API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *clientImpl) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientImpl) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientImpl) { c.logger = logger }
}

// NewClient creates a new Mailchimp client for one audience. The data center
// defaults to the one encoded in the API key.
func NewClient(apiKey, audienceID string, opts ...Option) Client {
	c := &clientImpl{
		apiKey:     apiKey,
		audienceID: audienceID,
		baseURL:    fmt.Sprintf("https://%s.api.mailchimp.com/3.0", DataCenter(apiKey)),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DataCenter extracts the region segment Mailchimp embeds after the dash in
// its API keys ("abc123-us21" -> "us21"), falling back to us5.
func DataCenter(apiKey string) string {
	parts := strings.Split(apiKey, "-")
	if len(parts) < 2 || parts[1] == "" {
		return defaultDataCenter
	}
	return parts[1]
}

// UpsertMember adds the address to the audience. An existing member is
// reported as ErrMemberExists; tags in member are not applied in that case.
func (c *clientImpl) UpsertMember(ctx context.Context, member Member) error {
	endpoint := fmt.Sprintf("%s/lists/%s/members", c.baseURL, url.PathEscape(c.audienceID))

	if err := c.post(ctx, endpoint, member); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Title == memberExistsTitle {
			c.logger.Debug("Mailchimp member already exists",
				zap.String("subscriber", utils.SubscriberHash(member.EmailAddress)))
			return ErrMemberExists
		}
		return err
	}

	c.logger.Info("Added Mailchimp member",
		zap.String("subscriber", utils.SubscriberHash(member.EmailAddress)),
		zap.Strings("tags", member.Tags))
	return nil
}

// AddTags activates tags on an existing member.
func (c *clientImpl) AddTags(ctx context.Context, email string, tags ...string) error {
	hash := utils.SubscriberHash(email)
	endpoint := fmt.Sprintf("%s/lists/%s/members/%s/tags", c.baseURL, url.PathEscape(c.audienceID), hash)

	type tag struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	payload := struct {
		Tags []tag `json:"tags"`
	}{}
	for _, name := range tags {
		payload.Tags = append(payload.Tags, tag{Name: name, Status: "active"})
	}

	if err := c.post(ctx, endpoint, payload); err != nil {
		return err
	}

	c.logger.Info("Tagged Mailchimp member", zap.String("subscriber", hash), zap.Strings("tags", tags))
	return nil
}

func (c *clientImpl) post(ctx context.Context, endpoint string, payload interface{}) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "apikey "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling Mailchimp: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		var problem struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &problem) == nil {
			apiErr.Title = problem.Title
			apiErr.Detail = problem.Detail
		}
		return apiErr
	}

	return nil
}
