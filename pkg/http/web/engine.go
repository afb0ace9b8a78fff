package web

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/parkingwang/swag/pkg/extract"
	"github.com/parkingwang/swag/pkg/mark"
)

// EngineTable 将任意gin.Engine的路由作为路由表
// gin只记录最后一个handler 所以无法分析rpc参数 只有路径参数和标记
type EngineTable struct {
	e *gin.Engine
	// 路径前缀 -> 分组
	prefixes map[string]string
	docs     map[mark.ID]string
}

var _ extract.RouteTable = (*EngineTable)(nil)

// NewEngineTable pprof路由默认属于pprof分组
func NewEngineTable(e *gin.Engine) *EngineTable {
	return &EngineTable{
		e: e,
		prefixes: map[string]string{
			"/debug/pprof": "pprof",
		},
		docs: map[mark.ID]string{},
	}
}

// WithGroup 指定前缀下的路由属于分组
func (t *EngineTable) WithGroup(prefix, group string) *EngineTable {
	t.prefixes[strings.TrimSuffix(prefix, "/")] = group
	return t
}

// WithDoc 设置handler的文档
func (t *EngineTable) WithDoc(h any, doc string) *EngineTable {
	t.docs[mark.IDOf(h)] = doc
	return t
}

func (t *EngineTable) Routes() []extract.Route {
	infos := t.e.Routes()
	ids := endpointIDs(infos)
	out := make([]extract.Route, 0, len(infos))
	for i, info := range infos {
		out = append(out, extract.Route{
			Rule:     info.Path,
			Methods:  []string{info.Method},
			Endpoint: ids[i],
			Group:    t.group(info.Path),
		})
	}
	return out
}

func (t *EngineTable) Handler(id mark.ID) (*extract.Handler, bool) {
	infos := t.e.Routes()
	for i, v := range endpointIDs(infos) {
		if v == id {
			return &extract.Handler{
				ID:   id,
				Doc:  t.docs[id],
				Func: infos[i].HandlerFunc,
			}, true
		}
	}
	return nil, false
}

// endpointIDs gin只记录函数名 同名的匿名handler按出现顺序编号
func endpointIDs(infos gin.RoutesInfo) []mark.ID {
	seen := make(map[mark.ID]int)
	out := make([]mark.ID, len(infos))
	for i, info := range infos {
		id := mark.ID(info.Handler)
		if id.Anonymous() {
			seen[id]++
			id = id.Nth(seen[id])
		}
		out[i] = id
	}
	return out
}

// group 最长前缀匹配
func (t *EngineTable) group(path string) string {
	var (
		name string
		best = -1
	)
	for prefix, g := range t.prefixes {
		if (path == prefix || strings.HasPrefix(path, prefix+"/")) && len(prefix) > best {
			name, best = g, len(prefix)
		}
	}
	return name
}
