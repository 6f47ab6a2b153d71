package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Paths are resolved against the client's base URL when one is configured.
type Client interface {
	Get(ctx context.Context, path string, query map[string]string) (Response, error)
	Post(ctx context.Context, path string, body any) (Response, error)
}
