package apidoc

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Origin 当前请求的scheme和host
type Origin struct {
	Scheme string
	Host   string
}

type requestKey struct{}

// WithRequest 在非gin环境下传入当前请求
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// OriginFromContext 从上下文中的请求获取origin
// 依次查找 WithRequest 与 gin.Context 不在请求中时返回false
func OriginFromContext(ctx context.Context) (Origin, bool) {
	r, ok := ctx.Value(requestKey{}).(*http.Request)
	if !ok || r == nil {
		r, ok = ctx.Value(gin.ContextRequestKey).(*http.Request)
	}
	if !ok || r == nil || r.Host == "" {
		return Origin{}, false
	}
	return RequestOrigin(r), true
}

// RequestOrigin 代理转发时优先使用 X-Forwarded-Proto X-Forwarded-Host
func RequestOrigin(r *http.Request) Origin {
	o := Origin{Scheme: "http", Host: r.Host}
	if r.TLS != nil {
		o.Scheme = "https"
	}
	if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		o.Scheme = strings.ToLower(proto)
	}
	if host := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); host != "" {
		o.Host = host
	}
	return o
}

func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
