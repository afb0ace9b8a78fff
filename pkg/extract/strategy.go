package extract

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/parkingwang/swag/pkg/mark"
	"github.com/parkingwang/swag/pkg/merge"
	"github.com/parkingwang/swag/pkg/oas"
)

// OperationContext 生成单个operation时的上下文
type OperationContext struct {
	Rule     string
	Path     string
	Method   string
	Endpoint mark.ID
	Group    string
	Params   []PathParam
	Handler  *Handler
}

// Strategy 在自动提取的基础上补充operation的内容
type Strategy interface {
	// Parameters 在路径参数之后追加参数
	Parameters(op *OperationContext, params []any) []any
	// Responses 返回空时使用默认的 default 响应
	Responses(op *OperationContext) map[string]any
	// Others 其他字段 最后合并到operation
	Others(op *OperationContext) oas.Node
}

// Default 不做任何补充
type Default struct{}

func (Default) Parameters(_ *OperationContext, params []any) []any { return params }

func (Default) Responses(*OperationContext) map[string]any { return nil }

func (Default) Others(*OperationContext) oas.Node { return nil }

// Marked 合并mark.Store中的标记
type Marked struct {
	Default
	Store *mark.Store
}

func (s Marked) lookup(op *OperationContext) oas.Node {
	if s.Store == nil {
		return nil
	}
	m, _ := s.Store.Lookup(op.Endpoint)
	return m
}

func (s Marked) Parameters(op *OperationContext, params []any) []any {
	params = s.Default.Parameters(op, params)
	if l, ok := oas.AsList(s.lookup(op)[oas.FieldParameters]); ok {
		params = append(params, l...)
	}
	return params
}

func (s Marked) Responses(op *OperationContext) map[string]any {
	if m, ok := oas.AsMap(s.lookup(op)[oas.FieldResponses]); ok && len(m) > 0 {
		return m
	}
	return s.Default.Responses(op)
}

func (s Marked) Others(op *OperationContext) oas.Node {
	m := s.lookup(op)
	if len(m) == 0 {
		return s.Default.Others(op)
	}
	out := make(oas.Node, len(m))
	for k, v := range m {
		if k == oas.FieldParameters || k == oas.FieldResponses {
			continue
		}
		out[k] = v
	}
	return out
}

// Bound 根据rpc风格handler的请求与响应结构体生成参数和响应
//
//	header:"x"  -> header参数
//	uri:"x"     -> 路径参数 已经由路由模板处理 这里跳过
//	form:"x"    -> GET时为query参数 其他为formData
//	json:"x"    -> body参数
type Bound struct {
	Default
}

func (s Bound) Parameters(op *OperationContext, params []any) []any {
	params = s.Default.Parameters(op, params)
	if op.Handler == nil {
		return params
	}
	in, ok := RequestType(op.Handler.Func)
	if !ok {
		return params
	}
	formIn := oas.InFormData
	if op.Method == http.MethodGet {
		formIn = oas.InQuery
	}
	var hasBody bool
	walkFields(in, func(field reflect.StructField) {
		comment := field.Tag.Get("comment")
		required := strings.Split(field.Tag.Get("binding"), ",")[0] == "required"
		for _, tag := range []string{"header", "form"} {
			name, ok := tagName(field, tag)
			if !ok {
				continue
			}
			location := oas.InHeader
			if tag == "form" {
				location = formIn
			}
			fields := oas.Fields{
				oas.FieldName:     name,
				oas.FieldIn:       location,
				oas.FieldRequired: required,
			}
			if base, ok := oas.BaseFragment(oas.KindOf(field.Type)); ok {
				for k, v := range base {
					fields[k] = v
				}
			}
			if comment != "" {
				fields[oas.FieldDescription] = comment
			}
			if p, err := oas.Parameter.Build(fields); err == nil {
				params = append(params, p)
			}
		}
		if _, ok := tagName(field, "json"); ok {
			hasBody = true
		}
	})
	if hasBody {
		schema, err := oas.StructImporter{Tag: "json"}.Import(reflect.New(in))
		if err == nil {
			params = append(params, oas.Node{
				oas.FieldName:     "body",
				oas.FieldIn:       oas.InBody,
				oas.FieldRequired: true,
				oas.FieldSchema:   schema,
			})
		}
	}
	return params
}

func (s Bound) Responses(op *OperationContext) map[string]any {
	if op.Handler == nil {
		return s.Default.Responses(op)
	}
	out, ok := ResponseType(op.Handler.Func)
	if !ok {
		return s.Default.Responses(op)
	}
	resp := oas.Node{oas.FieldDescription: "Successful operation"}
	if schema, err := (oas.StructImporter{Tag: "json"}).Import(reflect.New(out)); err == nil {
		resp[oas.FieldSchema] = schema
	}
	return map[string]any{"200": resp}
}

func walkFields(t reflect.Type, f func(reflect.StructField)) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				walkFields(ft, f)
				continue
			}
		}
		f(field)
	}
}

func tagName(field reflect.StructField, tag string) (string, bool) {
	v, ok := field.Tag.Lookup(tag)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(strings.Split(v, ",")[0])
	if v == "" || v == "-" {
		return "", false
	}
	return v, true
}

// Chain 依次组合多个策略
// 参数按顺序追加 响应和其他字段按顺序深度合并
func Chain(strategies ...Strategy) Strategy {
	return chain(strategies)
}

type chain []Strategy

func (c chain) Parameters(op *OperationContext, params []any) []any {
	for _, s := range c {
		params = s.Parameters(op, params)
	}
	return params
}

func (c chain) Responses(op *OperationContext) map[string]any {
	var out map[string]any
	for _, s := range c {
		if r := s.Responses(op); len(r) > 0 {
			out = merge.Maps(out, r)
		}
	}
	return out
}

func (c chain) Others(op *OperationContext) oas.Node {
	var out oas.Node
	for _, s := range c {
		if o := s.Others(op); len(o) > 0 {
			out = merge.Maps(out, o)
		}
	}
	return out
}
