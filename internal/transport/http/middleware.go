package http

import (
	"net/http"
	"time"
)

// DefaultTimeout applies to clients built without a caller-supplied one.
const DefaultTimeout = 10 * time.Second

// BearerTransport attaches the run's session token to every outgoing request.
type BearerTransport struct {
	token string
	next  http.RoundTripper
}

func NewBearerTransport(token string, next http.RoundTripper) *BearerTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &BearerTransport{token: token, next: next}
}

func (t *BearerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(r)
}

// Wrap returns a client that shares base's settings but authenticates with token.
func Wrap(base *http.Client, token string) *http.Client {
	if base == nil {
		base = &http.Client{Timeout: DefaultTimeout}
	}
	c := *base
	c.Transport = NewBearerTransport(token, base.Transport)
	return &c
}
