package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"strings"

	"github.com/parkingwang/swag/pkg/mark"
)

// Route 路由表中的一条记录
type Route struct {
	// 路由模板 gin或转换器写法
	Rule    string
	Methods []string
	// handler标识
	Endpoint mark.ID
	// 所属分组 没有分组为空
	Group string
}

// Handler handler的信息
type Handler struct {
	ID mark.ID
	// 文档注释
	Doc string
	// 原始handler 用于分析参数类型
	Func any
	// 显式声明的路径参数类型 优先于Func分析的结果
	Params map[string]reflect.Type
}

// RouteTable 路由表
type RouteTable interface {
	Routes() []Route
	Handler(endpoint mark.ID) (*Handler, bool)
}

var (
	// ErrHandlerLookup 路由引用的handler不存在
	ErrHandlerLookup = errors.New("handler lookup failed")
)

// HandlerLookupError 路由引用的handler不存在
type HandlerLookupError struct {
	Endpoint mark.ID
	Rule     string
}

func (e *HandlerLookupError) Error() string {
	return fmt.Sprintf("extract: %v: endpoint %s (rule %s)", ErrHandlerLookup, e.Endpoint, e.Rule)
}

func (e *HandlerLookupError) Unwrap() error {
	return ErrHandlerLookup
}

// Filter 路由过滤
// nil表示不过滤 Groups中的空字符串表示没有分组的路由
// 先按包含条件筛选 再排除 两者都匹配时排除优先
type Filter struct {
	Endpoints        []string
	Groups           []string
	ExcludeEndpoints []string
	ExcludeGroups    []string
}

func (f Filter) match(r Route) bool {
	if f.Groups != nil && !slices.Contains(f.Groups, r.Group) {
		return false
	}
	if len(f.Endpoints) > 0 && !matchEndpoint(r.Endpoint, f.Endpoints) {
		return false
	}
	if f.ExcludeGroups != nil && slices.Contains(f.ExcludeGroups, r.Group) {
		return false
	}
	if len(f.ExcludeEndpoints) > 0 && matchEndpoint(r.Endpoint, f.ExcludeEndpoints) {
		return false
	}
	return true
}

// 完整名称或者最后一个.之后的短名称
func matchEndpoint(id mark.ID, names []string) bool {
	s := string(id)
	short := s
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		short = s[i+1:]
	}
	return slices.Contains(names, s) || slices.Contains(names, short)
}

// implicit methods 由框架自动提供 不单独生成文档
var implicitMethods = []string{http.MethodHead, http.MethodOptions}

// Endpoints 路由模板 -> method -> 路由
type Endpoints map[string]map[string]Route

// CollectEndpoints 按路由模板聚合
func CollectEndpoints(table RouteTable, filter Filter) Endpoints {
	out := make(Endpoints)
	for _, r := range table.Routes() {
		if !filter.match(r) {
			continue
		}
		for _, m := range r.Methods {
			m = strings.ToUpper(m)
			if slices.Contains(implicitMethods, m) {
				continue
			}
			methods, ok := out[r.Rule]
			if !ok {
				methods = make(map[string]Route)
				out[r.Rule] = methods
			}
			methods[m] = r
		}
	}
	return out
}

var (
	rtypeContext = reflect.TypeOf((*context.Context)(nil)).Elem()
	rtypeError   = reflect.TypeOf((*error)(nil)).Elem()
)

// RequestType rpc风格handler的请求参数类型
// func(ctx context.Context, in *struct) (*struct, error)
func RequestType(fn any) (reflect.Type, bool) {
	tp := reflect.TypeOf(fn)
	if tp == nil || tp.Kind() != reflect.Func {
		return nil, false
	}
	if tp.NumIn() != 2 ||
		!tp.In(0).Implements(rtypeContext) ||
		tp.In(1).Kind() != reflect.Ptr ||
		tp.In(1).Elem().Kind() != reflect.Struct {
		return nil, false
	}
	return tp.In(1).Elem(), true
}

// ResponseType rpc风格handler的响应类型 只有error返回值时为false
func ResponseType(fn any) (reflect.Type, bool) {
	tp := reflect.TypeOf(fn)
	if _, ok := RequestType(fn); !ok {
		return nil, false
	}
	if tp.NumOut() != 2 || !tp.Out(1).Implements(rtypeError) {
		return nil, false
	}
	return tp.Out(0), true
}

// ParamType 查找handler中与路径参数同名的参数类型
func (h *Handler) ParamType(name string) (reflect.Type, bool) {
	if t, ok := h.Params[name]; ok {
		return t, true
	}
	in, ok := RequestType(h.Func)
	if !ok {
		return nil, false
	}
	return findTaggedField(in, "uri", name)
}

func findTaggedField(t reflect.Type, tag, name string) (reflect.Type, bool) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if typ, ok := findTaggedField(ft, tag, name); ok {
					return typ, true
				}
			}
			continue
		}
		v, ok := field.Tag.Lookup(tag)
		if ok && strings.TrimSpace(strings.Split(v, ",")[0]) == name {
			return field.Type, true
		}
	}
	return nil, false
}
