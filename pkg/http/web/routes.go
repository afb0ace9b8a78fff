package web

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/parkingwang/swag/pkg/extract"
	"github.com/parkingwang/swag/pkg/mark"
	"github.com/parkingwang/swag/pkg/oas"
)

// Routes 通过Router注册的路由信息 用于生成文档
type Routes struct {
	mu       sync.RWMutex
	routes   []extract.Route
	handlers map[mark.ID]*extract.Handler
	// 匿名handler的注册次数
	seen     map[mark.ID]int
	groups   map[string]string
	docsOnce sync.Once
}

var _ extract.RouteTable = (*Routes)(nil)

func NewRoutes() *Routes {
	return &Routes{
		handlers: make(map[mark.ID]*extract.Handler),
		seen:     make(map[mark.ID]int),
		groups:   make(map[string]string),
	}
}

// Routes 路由列表的拷贝
func (r *Routes) Routes() []extract.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]extract.Route, len(r.routes))
	copy(out, r.routes)
	return out
}

func (r *Routes) Handler(id mark.ID) (*extract.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[id]
	return h, ok
}

// Tags 有备注的分组
func (r *Routes) Tags() []oas.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]oas.Node, 0, len(names))
	for _, name := range names {
		t := oas.Node{oas.FieldName: name}
		if c := r.groups[name]; c != "" {
			t[oas.FieldDescription] = c
		}
		out = append(out, t)
	}
	return out
}

// Add 添加一条路由 rule可以是gin或者转换器写法
// 具名函数按名称共享标识 闭包和方法值每次注册都分配新的标识
func (r *Routes) Add(method, rule, group string, h any) *extract.Handler {
	id := mark.IDOf(h)
	r.mu.Lock()
	defer r.mu.Unlock()
	if id.Anonymous() {
		r.seen[id]++
		id = id.Nth(r.seen[id])
	}
	handler, ok := r.handlers[id]
	if !ok {
		handler = &extract.Handler{ID: id, Func: h}
		r.handlers[id] = handler
	}
	r.routes = append(r.routes, extract.Route{
		Rule:     rule,
		Methods:  []string{method},
		Endpoint: id,
		Group:    group,
	})
	if group != "" {
		if _, ok := r.groups[group]; !ok {
			r.groups[group] = ""
		}
	}
	return handler
}

func (r *Routes) addGroup(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[name]; !ok {
		r.groups[name] = ""
	}
}

func (r *Routes) commentGroup(name, comment string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[name] = comment
}

// SetDoc 设置handler的文档注释
func (r *Routes) SetDoc(id mark.ID, doc string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handlers[id]; ok {
		h.Doc = doc
	}
}

// loadSourceDocs 只执行一次 失败时只记录日志
func (r *Routes) loadSourceDocs(logger *slog.Logger) {
	r.docsOnce.Do(func() {
		r.mu.RLock()
		ids := make([]mark.ID, 0, len(r.handlers))
		for id, h := range r.handlers {
			if h.Doc == "" {
				ids = append(ids, id)
			}
		}
		r.mu.RUnlock()

		docs, err := LoadDocs(ids)
		if err != nil {
			logger.Warn("load handler docs failed", slog.Any("error", err))
		}
		for id, doc := range docs {
			r.SetDoc(id, doc)
		}
	})
}

func (r *Routes) echo(w io.Writer) {
	routes := r.Routes()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.DiscardEmptyColumns)
	var last string
	for _, v := range routes {
		if v.Group == "" {
			fmt.Fprintf(tw, "[router]├── %s\t%s\t%s\n", v.Rule, v.Methods[0], v.Endpoint)
			continue
		}
		if v.Group != last {
			fmt.Fprintf(tw, "[router]├── %s\t\t\n", v.Group)
			last = v.Group
		}
		fmt.Fprintf(tw, "[router]│   └── %s\t%s\t%s\n", v.Rule, v.Methods[0], v.Endpoint)
	}
	tw.Flush()
}

func joinPaths(absolutePath, relativePath string) string {
	if relativePath == "" {
		return absolutePath
	}
	finalPath := path.Join(absolutePath, relativePath)
	// path.Join 会去掉结尾的/
	if strings.HasSuffix(relativePath, "/") && !strings.HasSuffix(finalPath, "/") {
		return finalPath + "/"
	}
	return finalPath
}

func groupName(basePath string) string {
	return strings.Trim(basePath, "/")
}
