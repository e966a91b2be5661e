package ctxhttpclient

import (
	"context"
	"net/http"
)

var httpClientKey int

func WithHTTPClient(ctx context.Context, httpClient *http.Client) context.Context {
	return context.WithValue(ctx, &httpClientKey, httpClient)
}

// GetHTTPClient returns the client stored in ctx, or http.DefaultClient.
func GetHTTPClient(ctx context.Context) *http.Client {
	if v, ok := ctx.Value(&httpClientKey).(*http.Client); ok && v != nil {
		return v
	}

	return http.DefaultClient
}
