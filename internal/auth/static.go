package auth

import (
	"context"
	"fmt"
	"net/http"
)

// StaticTokenProvider attaches a fixed pre-shared token to every request
// using the "Token" authorization scheme the reputation API expects.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider around the given token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{
		token: token,
	}
}

// Token returns the static token immediately without any network calls.
func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	return p.token, nil
}

// InjectHeader sets the Authorization header on the request.
func (p *StaticTokenProvider) InjectHeader(ctx context.Context, req *http.Request) error {
	req.Header.Set("Authorization", fmt.Sprintf("Token %s", p.token))
	return nil
}

// Close is a no-op for static token providers.
func (p *StaticTokenProvider) Close() error {
	return nil
}
