package client

import (
	"net/http"
	"strings"
)

// TokenSource supplies the current access token, or "" when signed out.
type TokenSource interface {
	AccessToken() string
}

// AuthTransport attaches "Authorization: Bearer <token>" to every request
// while a token is available and passes requests through untouched
// otherwise. It reads the token per request and never writes it: expired
// tokens are not refreshed and 401/403 responses are returned as they are.
//
// When Host is set the header is only attached to requests for that host, so
// a redirect to another host never carries the token.
type AuthTransport struct {
	Base   http.RoundTripper
	Tokens TokenSource
	Host   string
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Tokens == nil || (t.Host != "" && !strings.EqualFold(req.URL.Host, t.Host)) {
		return base.RoundTrip(req)
	}
	token := t.Tokens.AccessToken()
	if token == "" {
		return base.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(r)
}
