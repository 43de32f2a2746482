package webclient

import (
	"context"
)

// WebClient performs outbound HTTP fetches on behalf of pipeline stages.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a shorthand for a bodiless GET.
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
