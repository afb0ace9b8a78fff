package client

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func NewHttpTransport() http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
}

// NewHttpClient timeout为0时没有超时
func NewHttpClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: NewHttpTransport(),
		Timeout:   timeout,
	}
}
