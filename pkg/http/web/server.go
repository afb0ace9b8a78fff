package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/parkingwang/swag/pkg/apidoc"
	"github.com/parkingwang/swag/pkg/extract"
	"github.com/parkingwang/swag/pkg/http/code"
	"github.com/parkingwang/swag/pkg/mark"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

type Server struct {
	opt     *option
	e       *gin.Engine
	httpsrv *http.Server
	doc     *apidoc.Generator
}

func (g *Server) Route(f func(*gin.Engine, Handler)) {
	f(g.e, handleWarpf(g.opt))
}

func New(opts ...Option) *Server {
	opt := defaultOption()
	for _, o := range opts {
		o(opt)
	}
	if opt.marks == nil {
		opt.marks = mark.New(mark.WithDefaultImporters())
	}
	// 关闭gin默认的校验
	// 等待所有都读取完成后统一校验
	binding.Validator = nil
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.ContextWithFallback = true
	e.NoRoute(func(ctx *gin.Context) {
		opt.render(ctx, nil, code.NewNotfoundError("route not found"))
	})
	e.Use(
		middleware("apiservice"),
		gin.CustomRecovery(func(c *gin.Context, err any) {
			slog.ErrorContext(c, "gin.panic", slog.Any("err", err))
			c.Abort()
			opt.render(c, nil,
				code.NewCodeError(
					http.StatusInternalServerError,
					"%s", http.StatusText(http.StatusInternalServerError),
				),
			)
		}),
	)

	pprof.Register(e)

	s := &Server{
		opt: opt,
		e:   e,
		httpsrv: &http.Server{
			Handler: e,
		},
	}
	if opt.doc != nil {
		s.doc = apidoc.New(append([]apidoc.Option{
			apidoc.WithExtractor(extract.New(
				extract.WithStrategy(extract.Chain(extract.Bound{}, extract.Marked{Store: opt.marks})),
				extract.WithGroupTags(),
			)),
		}, opt.doc.generator...)...)
		s.registerDoc()
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.opt.routes.echo(os.Stdout)
	if s.opt.doc != nil && s.opt.doc.sourceDocs {
		s.opt.routes.loadSourceDocs(slog.Default())
	}

	l, err := net.Listen("tcp", s.opt.addr)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Starting HTTP server", slog.String("addr", s.opt.addr))
	go s.httpsrv.Serve(l)
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	slog.InfoContext(ctx, "Shutdown HTTP server", slog.String("addr", s.opt.addr))
	return s.httpsrv.Shutdown(ctx)
}

// Router rpc风格的路由
func (s *Server) Router() Router {
	return &route{
		opt: s.opt,
		r:   s.e,
	}
}

// Routes 通过Router注册的路由表
func (s *Server) Routes() *Routes {
	return s.opt.routes
}

// Marks 文档标记
func (s *Server) Marks() *mark.Store {
	return s.opt.marks
}

// GinEngine 返回原始的ginEngine
func (s *Server) GinEngine() *gin.Engine {
	return s.e
}

// GinContext 返回原始的ginContext
func GinContext(ctx context.Context) (*gin.Context, bool) {
	c, ok := ctx.(*gin.Context)
	return c, ok
}

func middleware(service string) gin.HandlerFunc {
	tracer := otel.GetTracerProvider().Tracer("github.com/parkingwang/swag/pkg/http/web")
	txtpropagator := otel.GetTextMapPropagator()
	return func(c *gin.Context) {
		savedCtx := c.Request.Context()
		defer func() {
			c.Request = c.Request.WithContext(savedCtx)
		}()

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		ctx := txtpropagator.Extract(savedCtx, propagation.HeaderCarrier(c.Request.Header))
		opts := []trace.SpanStartOption{
			trace.WithAttributes(semconv.NetAttributesFromHTTPRequest("tcp", c.Request)...),
			trace.WithAttributes(semconv.EndUserAttributesFromHTTPRequest(c.Request)...),
			trace.WithAttributes(semconv.HTTPServerAttributesFromHTTPRequest(service, c.FullPath(), c.Request)...),
			trace.WithSpanKind(trace.SpanKindServer),
		}
		spanName := c.FullPath()
		if spanName == "" {
			spanName = fmt.Sprintf("HTTP %s route not found", c.Request.Method)
		}
		ctx, span := tracer.Start(ctx, spanName, opts...)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		attrs := semconv.HTTPAttributesFromHTTPStatusCode(status)
		spanStatus, spanMessage := semconv.SpanStatusFromHTTPStatusCodeAndSpanKind(status, trace.SpanKindServer)
		span.SetAttributes(attrs...)
		span.SetStatus(spanStatus, spanMessage)

		loglvl := slog.LevelInfo
		logattrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
			slog.Int("status", status),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
		}

		if len(c.Errors) > 0 {
			span.SetAttributes(attribute.String("gin.errors", c.Errors.String()))
			span.SetStatus(codes.Error, c.Errors.String())
			loglvl = slog.LevelError
			logattrs = append(logattrs, slog.String("err", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		if rerr := c.GetString(responseErrKey); rerr != "" {
			logattrs = append(logattrs,
				slog.String("response.error", rerr),
			)
		}

		slog.LogAttrs(ctx, loglvl, "gin.access", logattrs...)
	}
}
