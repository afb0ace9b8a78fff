package extract

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/parkingwang/swag/pkg/merge"
	"github.com/parkingwang/swag/pkg/oas"
)

// Extractor 从路由表生成paths
type Extractor struct {
	strategy  Strategy
	logger    *slog.Logger
	groupTags bool
	strict    bool
}

type Option func(*Extractor)

// WithStrategy 设置补充策略 默认为 Default
func WithStrategy(s Strategy) Option {
	return func(e *Extractor) {
		e.strategy = s
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// WithGroupTags 分组下的operation没有tags时使用分组名作为tag
func WithGroupTags() Option {
	return func(e *Extractor) {
		e.groupTags = true
	}
}

// WithStrict 使用严格模式构造operation
func WithStrict() Option {
	return func(e *Extractor) {
		e.strict = true
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		strategy: Default{},
	}
	for _, o := range opts {
		o(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// ExtractPaths 生成 path -> PathItem
// handler不存在时返回 *HandlerLookupError 不生成部分结果
// 其他问题(无法解析的路由模板 缺少文档 无法推断的类型)只记录日志
func (e *Extractor) ExtractPaths(table RouteTable, filter Filter) (map[string]oas.Node, error) {
	endpoints := CollectEndpoints(table, filter)
	rules := make([]string, 0, len(endpoints))
	for rule := range endpoints {
		rules = append(rules, rule)
	}
	sort.Strings(rules)

	paths := make(map[string]oas.Node, len(rules))
	for _, rule := range rules {
		path, params, err := ParseRule(rule)
		if err != nil {
			e.logger.Warn("skip route", "rule", rule, "error", err)
			continue
		}
		methods := endpoints[rule]
		names := make([]string, 0, len(methods))
		for m := range methods {
			names = append(names, m)
		}
		sort.Strings(names)

		item := oas.Fields{}
		for _, method := range names {
			route := methods[method]
			h, ok := table.Handler(route.Endpoint)
			if !ok {
				return nil, &HandlerLookupError{Endpoint: route.Endpoint, Rule: rule}
			}
			op, err := e.operation(&OperationContext{
				Rule:     rule,
				Path:     path,
				Method:   method,
				Endpoint: route.Endpoint,
				Group:    route.Group,
				Params:   params,
				Handler:  h,
			})
			if err != nil {
				return nil, err
			}
			item[strings.ToLower(method)] = op
		}

		// 同一个path可能来自不同写法的路由模板
		if existing, ok := paths[path]; ok {
			for k, v := range existing {
				if _, dup := item[k]; !dup {
					item[k] = v
				}
			}
		}
		pi, err := oas.PathItem.Build(item)
		if err != nil {
			return nil, err
		}
		paths[path] = pi
	}
	return paths, nil
}

func (e *Extractor) operation(op *OperationContext) (oas.Node, error) {
	params := make([]any, 0, len(op.Params))
	for _, p := range op.Params {
		params = append(params, e.pathParameter(op, p))
	}
	params = e.strategy.Parameters(op, params)
	if err := oas.CheckParameters(params); err != nil {
		e.logger.Warn("duplicate parameter", "rule", op.Rule, "method", op.Method, "error", err)
	}

	fields := oas.Fields{
		oas.FieldParameters: params,
	}
	if doc := strings.TrimSpace(op.Handler.Doc); doc != "" {
		fields[oas.FieldDescription] = oas.NormalizeIndent(doc)
		fields[oas.FieldSummary] = oas.Summarize(doc)
	}

	responses := e.strategy.Responses(op)
	if len(responses) == 0 {
		responses = map[string]any{
			oas.ResponseDefault: oas.Node{oas.FieldDescription: ""},
		}
	}
	fields[oas.FieldResponses] = responses

	if others := e.strategy.Others(op); len(others) > 0 {
		fields = merge.Maps(fields, others)
	}
	if e.groupTags && op.Group != "" {
		if _, ok := fields[oas.FieldTags]; !ok {
			fields[oas.FieldTags] = []any{op.Group}
		}
	}

	var opts []oas.BuildOption
	if e.strict {
		opts = append(opts, oas.Strict())
	}
	n, err := oas.Operation.Build(fields, opts...)
	if err != nil {
		var fe *oas.FieldError
		if errors.As(err, &fe) {
			e.logger.Error("build operation", "rule", op.Rule, "method", op.Method, "field", fe.Field)
		}
		return nil, err
	}
	return n, nil
}

// pathParameter 按 转换器 -> handler参数类型 -> string 的顺序推断类型
func (e *Extractor) pathParameter(op *OperationContext, p PathParam) oas.Node {
	fields := oas.Fields{
		oas.FieldName:     p.Name,
		oas.FieldIn:       oas.InPath,
		oas.FieldRequired: true,
	}
	base, ok := e.converterFragment(p)
	if !ok {
		base, ok = e.signatureFragment(op, p.Name)
	}
	if !ok {
		base = oas.Node{oas.FieldType: oas.TypeString}
	}
	for k, v := range base {
		fields[k] = v
	}
	return oas.Parameter.MustBuild(fields)
}

func (e *Extractor) converterFragment(p PathParam) (oas.Node, bool) {
	if p.Converter == "" {
		return nil, false
	}
	kind, ok := ConverterKind(p.Converter)
	if !ok {
		e.logger.Debug("unknown converter", "converter", p.Converter, "name", p.Name)
		return nil, false
	}
	base, ok := oas.BaseFragment(kind)
	if !ok {
		return nil, false
	}
	if p.Converter == "any" && len(p.Args) > 0 {
		base["enum"] = append([]any(nil), p.Args...)
	}
	return base, true
}

func (e *Extractor) signatureFragment(op *OperationContext, name string) (oas.Node, bool) {
	if op.Handler == nil {
		return nil, false
	}
	t, ok := op.Handler.ParamType(name)
	if !ok {
		return nil, false
	}
	return oas.BaseFragment(oas.KindOf(t))
}
