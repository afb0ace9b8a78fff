// Package apidoc 从路由表组装完整的swagger文档
package apidoc

import (
	"context"
	"log/slog"
	"slices"

	"github.com/parkingwang/swag/internal/config"
	"github.com/parkingwang/swag/pkg/extract"
	"github.com/parkingwang/swag/pkg/oas"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GroupName 文档自身路由所在的分组
const GroupName = "swag"

const tracerName = "github.com/parkingwang/swag/pkg/apidoc"

// TagLister 路由表可以额外提供分组的tag描述
type TagLister interface {
	Tags() []oas.Node
}

// Generator 每次请求重新生成文档
// host和schemes来自当前请求 所以不缓存结果
type Generator struct {
	info          oas.Fields
	extra         oas.Fields
	basePath      string
	excludeGroups []string
	filter        extract.Filter
	extractor     *extract.Extractor
	logger        *slog.Logger
	tracer        trace.Tracer
}

type Option func(*Generator)

// WithInfo 显式指定info
func WithInfo(info oas.Fields) Option {
	return func(g *Generator) {
		g.info = info
	}
}

// WithInfoFromConfig 从配置读取 title version description termsOfService basePath
// 配置中存在的字段覆盖之前通过WithInfo设置的字段
func WithInfoFromConfig(cfg config.Provider) Option {
	return func(g *Generator) {
		if cfg == nil {
			return
		}
		info := oas.Fields{}
		for k, v := range g.info {
			info[k] = v
		}
		g.info = info
		for key, field := range map[string]string{
			"title":          oas.FieldTitle,
			"version":        oas.FieldVersion,
			"description":    oas.FieldDescription,
			"termsOfService": "terms_of_service",
		} {
			if !cfg.IsSet(key) {
				continue
			}
			g.info[field] = cfg.GetString(key)
		}
		if cfg.IsSet("basePath") {
			g.basePath = cfg.GetString("basePath")
		}
	}
}

// WithExtraFields 覆盖文档的顶层字段 使用内部字段名
func WithExtraFields(fields oas.Fields) Option {
	return func(g *Generator) {
		g.extra = fields
	}
}

// WithExcludeGroup 排除的分组 默认排除文档自身的分组
func WithExcludeGroup(groups ...string) Option {
	return func(g *Generator) {
		g.excludeGroups = groups
	}
}

// WithFilter 额外的路由过滤条件 排除分组始终生效
func WithFilter(f extract.Filter) Option {
	return func(g *Generator) {
		g.filter = f
	}
}

func WithExtractor(e *extract.Extractor) Option {
	return func(g *Generator) {
		g.extractor = e
	}
}

func WithBasePath(p string) Option {
	return func(g *Generator) {
		g.basePath = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{
		excludeGroups: []string{GroupName},
	}
	for _, o := range opts {
		o(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.extractor == nil {
		g.extractor = extract.New(extract.WithLogger(g.logger))
	}
	g.tracer = otel.GetTracerProvider().Tracer(tracerName)
	return g
}

// Generate 生成wire格式的文档
func (g *Generator) Generate(ctx context.Context, table extract.RouteTable) (oas.Wire, error) {
	ctx, span := g.tracer.Start(ctx, "swag.generate")
	defer span.End()

	doc, err := g.document(ctx, table)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	paths, _ := oas.AsMap(doc[oas.FieldPaths])
	span.SetAttributes(attribute.Int("swag.paths", len(paths)))
	g.logger.DebugContext(ctx, "swagger generated", slog.Int("paths", len(paths)))
	return oas.Serialize(doc), nil
}

func (g *Generator) document(ctx context.Context, table extract.RouteTable) (oas.Node, error) {
	info, err := oas.Info.Build(g.info)
	if err != nil {
		return nil, err
	}

	filter := g.filter
	filter.ExcludeGroups = append(append([]string{}, filter.ExcludeGroups...), g.excludeGroups...)
	paths, err := g.extractor.ExtractPaths(table, filter)
	if err != nil {
		return nil, err
	}

	fields := oas.Fields{
		oas.FieldInfo:  info,
		oas.FieldPaths: paths,
	}
	if o, ok := OriginFromContext(ctx); ok {
		fields[oas.FieldHost] = o.Host
		fields[oas.FieldSchemes] = []any{o.Scheme}
	}
	if g.basePath != "" {
		fields[oas.FieldBasePath] = g.basePath
	}
	if tl, ok := table.(TagLister); ok {
		if tags := g.tags(tl.Tags()); len(tags) > 0 {
			fields[oas.FieldTags] = tags
		}
	}
	for k, v := range g.extra {
		fields[k] = v
	}
	return oas.Document.Build(fields)
}

func (g *Generator) tags(in []oas.Node) []any {
	var out []any
	for _, t := range in {
		name, _ := t[oas.FieldName].(string)
		if slices.Contains(g.excludeGroups, name) {
			continue
		}
		tag, err := oas.Tag.Build(t)
		if err != nil {
			g.logger.Warn("skip tag", slog.Any("error", err))
			continue
		}
		out = append(out, tag)
	}
	return out
}
