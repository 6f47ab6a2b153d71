package publicapi

import (
	"context"
	"net/http"
	"time"

	"github.com/alpn-software/portfolio-client/pkg/httpclient"
)

const (
	// DefaultBaseURL is the public route group of the portfolio API.
	DefaultBaseURL = "https://api-dev.alpn-software.com/api/v1/public"

	resumePath   = "/resume"
	contactsPath = "/contacts"
	healthPath   = "/health"
	versionPath  = "/version"
)

// Formats the resume endpoint serves. They are not checked client-side.
const (
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Response aliases the transport response returned unmodified to callers.
type Response = httpclient.Response

// Config overrides the fixed client configuration. The zero value targets
// DefaultBaseURL with a JSON Content-Type and no timeout.
type Config struct {
	BaseURL string
	Headers map[string]string
	Timeout time.Duration
}

// Client issues requests against the public API. It holds no mutable state
// and is safe for concurrent use.
type Client struct {
	http httpclient.Client
}

// New builds a Client backed by resty.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return NewWithHTTPClient(httpclient.NewRestyClient(httpclient.Options{
		BaseURL: baseURL,
		Headers: headers,
		Timeout: cfg.Timeout,
	}))
}

// NewWithHTTPClient wraps an existing transport, mainly for tests.
func NewWithHTTPClient(client httpclient.Client) *Client {
	return &Client{http: client}
}

// FetchCV requests the resume in the given format.
func (c *Client) FetchCV(ctx context.Context, format string) (Response, error) {
	resp, err := c.http.Get(ctx, resumePath, map[string]string{"format": format})
	return checkStatus(http.MethodGet, resumePath, resp, err)
}

// CreateContact posts the email, name and message fields of data to the contacts endpoint.
func (c *Client) CreateContact(ctx context.Context, data ContactData) (Response, error) {
	resp, err := c.http.Post(ctx, contactsPath, NewContactPayload(data))
	return checkStatus(http.MethodPost, contactsPath, resp, err)
}

// Health calls the service health probe.
func (c *Client) Health(ctx context.Context) (Response, error) {
	resp, err := c.http.Get(ctx, healthPath, nil)
	return checkStatus(http.MethodGet, healthPath, resp, err)
}

// Version calls the API version endpoint.
func (c *Client) Version(ctx context.Context) (Response, error) {
	resp, err := c.http.Get(ctx, versionPath, nil)
	return checkStatus(http.MethodGet, versionPath, resp, err)
}

var defaultClient = New(Config{})

// Default returns the shared client bound to DefaultBaseURL.
func Default() *Client { return defaultClient }

// FetchCV requests the resume through the shared default client.
func FetchCV(ctx context.Context, format string) (Response, error) {
	return defaultClient.FetchCV(ctx, format)
}

// CreateContact submits a contact form through the shared default client.
func CreateContact(ctx context.Context, data ContactData) (Response, error) {
	return defaultClient.CreateContact(ctx, data)
}
