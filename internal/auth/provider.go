package auth

import (
	"context"
	"net/http"
)

// Provider supplies authentication credentials and injects them into
// outbound HTTP requests.
type Provider interface {
	// Token returns the credential value to send.
	Token(ctx context.Context) (string, error)

	// InjectHeader sets the Authorization header on the request.
	InjectHeader(ctx context.Context, req *http.Request) error

	// Close releases any resources held by the provider.
	Close() error
}
