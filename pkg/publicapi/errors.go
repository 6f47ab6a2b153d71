package publicapi

import (
	"fmt"
	"strings"
)

// StatusError reports a non-2xx reply. The response is returned alongside it unchanged.
type StatusError struct {
	Method   string
	Path     string
	Response Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d body: %s", e.Method, e.Path, e.Response.StatusCode(), responseSnippet(e.Response.Body()))
}

// StatusCode returns the HTTP status carried by the error.
func (e *StatusError) StatusCode() int {
	return e.Response.StatusCode()
}

// checkStatus passes transport errors through untouched and flags non-2xx replies.
func checkStatus(method, path string, resp Response, err error) (Response, error) {
	if err != nil {
		return nil, err
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return resp, &StatusError{Method: method, Path: path, Response: resp}
	}
	return resp, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
