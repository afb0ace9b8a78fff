package swag

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/parkingwang/swag/pkg/apidoc"
	"github.com/parkingwang/swag/pkg/http/web"
	"github.com/parkingwang/swag/pkg/mark"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
)

type Application struct {
	fxProvides    []any
	fxInvokeFuncs []any
	info          AppInfo
	marks         *mark.Store
}

func New(info AppInfo) *Application {
	cfg := Conf().Child("app")
	if cfg != nil {
		slog.SetDefault(slog.New(NewTraceSlogHandler(
			os.Stderr,
			cfg.GetBool("log.addSource"),
			func() slog.Leveler {
				if cfg.GetBool("log.debug") {
					return slog.LevelDebug
				}
				return slog.LevelInfo
			}(),
		)))
	}

	if info.Version == "" {
		info.Version = getVCSVersion()
	}

	exportType := ""
	if cfg != nil {
		exportType = cfg.GetString("traceExport.type")
	}
	slog.Info("init app",
		slog.String("name", info.Name),
		slog.String("version", info.Version),
		slog.String("traceExportType", exportType),
	)

	// enable trace
	tp, err := newTraceProvider(info.Name, info.Version, initTraceExport())
	if err != nil {
		slog.Error("init tracer povider failed", slog.Any("error", err))
		os.Exit(1)
	}
	otel.SetTextMapPropagator(b3.New())
	otel.SetTracerProvider(tp)

	return &Application{
		info:  info,
		marks: mark.New(mark.WithDefaultImporters()),
	}
}

// Provide 依赖注入构造器
func (app *Application) Provide(provide ...any) {
	app.fxProvides = append(app.fxProvides, provide...)
}

// Invoke 注册调用
func (app *Application) Invoke(funcs ...any) {
	app.fxInvokeFuncs = append(app.fxInvokeFuncs, funcs...)
}

// Marks handler的文档标记 CreateWebServer创建的服务共用
func (app *Application) Marks() *mark.Store {
	return app.marks
}

func fxLifecycle(srvs []Servicer, lc fx.Lifecycle) {
	for _, v := range srvs {
		lc.Append(fx.Hook{
			OnStart: v.Start,
			OnStop:  v.Stop,
		})
	}
}

func (app *Application) Run(srv ...any) {
	for _, v := range srv {
		app.fxProvides = append(app.fxProvides, asServicer(v))
	}
	fxapp := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxInjectLogger{
				baselog: slog.With(slog.String("type", "swag")),
			}
		}),
		fx.Supply(app.marks),
		fx.Provide(app.fxProvides...),
		fx.Invoke(app.fxInvokeFuncs...),
		fx.Invoke(
			fx.Annotate(
				fxLifecycle,
				fx.ParamTags(`group:"services"`),
			),
		),
	)
	fxapp.Run()
}

func asServicer(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(Servicer)),
		fx.ResultTags(`group:"services"`),
	)
}

type fxInjectLogger struct {
	baselog *slog.Logger
}

func (m *fxInjectLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.Provided:
		if e.Err != nil {
			m.baselog.Error("provided error encountered while applying options", slog.Any("error", e.Err))
		}
	case *fxevent.Invoked:
		if e.Err != nil {
			m.baselog.Error("invoked failed", slog.Any("error", e.Err), slog.String("function", e.FunctionName))
		}
	case *fxevent.Stopping:
		m.baselog.Info("received signal", slog.String("signal", strings.ToUpper(e.Signal.String())))
	case *fxevent.Stopped:
		if e.Err != nil {
			m.baselog.Error("stop failed", slog.Any("error", e.Err))
		}
	case *fxevent.Started:
		if e.Err != nil {
			m.baselog.Error("start failed", slog.Any("error", e.Err))
		} else {
			m.baselog.Info("started")
		}
	}
}

// Servicer 服务接口
type Servicer interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// CreateWebServer 根据 server.web 配置创建web服务
// openapi 为true时开启文档 文档的info来自 swag 配置 没有配置时使用AppInfo
func (app *Application) CreateWebServer() *web.Server {
	cfg := Conf().Child("server.web")
	if cfg == nil {
		return web.New(web.WithMarkStore(app.marks))
	}
	opts := []web.Option{
		web.WithAddr(cfg.GetString("addr")),
		web.WithDumpRequestBody(cfg.GetBool("dumpRequest")),
		web.WithMarkStore(app.marks),
	}
	if cfg.GetBool("openapi") {
		opts = append(opts,
			web.WithOpenAPI(
				apidoc.WithInfo(app.docInfo()),
				apidoc.WithInfoFromConfig(Conf().Child("swag")),
			),
			web.WithDocPrefix(cfg.GetString("docPrefix")),
			web.WithSourceDocs(true),
		)
	}
	return web.New(opts...)
}

// docInfo 默认的文档info 会被 swag 配置覆盖
func (app *Application) docInfo() map[string]any {
	info := map[string]any{
		"title":   app.info.Name,
		"version": app.info.Version,
	}
	if app.info.Description != "" {
		info["description"] = app.info.Description
	}
	if info["version"] == "" {
		info["version"] = "0.0.0"
	}
	return info
}

func initTraceExport() TraceExporter {
	cfg := Conf().Child("app.traceExport")
	if cfg != nil {
		switch cfg.GetString("type") {
		case "http":
			return ExportHTTP(cfg.GetString("endpoint"), cfg.GetBool("usehttps"))
		case "grpc":
			return ExportGRPC(cfg.GetString("endpoint"))
		case "stdout":
			return ExportStdout(cfg.GetBool("pretty"))
		}
	}

	return ExportEmpty()
}
