package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkingwang/swag/pkg/extract"
	"github.com/parkingwang/swag/pkg/mark"
)

type Router interface {
	// rpc模式路由方法
	// handler 支持rpc方法和gin.HandleFunc(为了支持gin中间件)
	// path 支持gin写法以及 <int:id> 转换器写法
	Get(path string, handler ...any) Commenter
	Post(path string, handler ...any) Commenter
	Put(path string, handler ...any) Commenter
	Patch(path string, handler ...any) Commenter
	Delete(path string, handler ...any) Commenter
	Handle(method, path string, handler ...any) Commenter
	// 同gin
	Use(handler ...gin.HandlerFunc) Router
	Group(path string, handler ...gin.HandlerFunc) GroupCommenter
}

// Commenter 为路由添加备注 备注作为文档的描述
type Commenter interface {
	Comment(string)
	// Mark 为handler添加文档标记
	Mark(anns ...mark.Annotation)
}

type GroupCommenter interface {
	Comment(string)
	Router
}

type route struct {
	opt      *option
	basepath string
	group    string
	r        gin.IRoutes
}

func (s *route) Get(path string, handler ...any) Commenter {
	return s.Handle(http.MethodGet, path, handler...)
}

func (s *route) Post(path string, handler ...any) Commenter {
	return s.Handle(http.MethodPost, path, handler...)
}

func (s *route) Put(path string, handler ...any) Commenter {
	return s.Handle(http.MethodPut, path, handler...)
}

func (s *route) Patch(path string, handler ...any) Commenter {
	return s.Handle(http.MethodPatch, path, handler...)
}

func (s *route) Delete(path string, handler ...any) Commenter {
	return s.Handle(http.MethodDelete, path, handler...)
}

// Comment 分组的备注作为tag的描述
func (s *route) Comment(c string) {
	if s.group != "" {
		s.opt.routes.commentGroup(s.group, c)
	}
}

func (s *route) Use(handler ...gin.HandlerFunc) Router {
	s2 := *s
	s2.r = s.r.Use(handler...)
	return &s2
}

func (s *route) Group(path string, handler ...gin.HandlerFunc) GroupCommenter {
	ginPath, err := extract.GinPath(path)
	if err != nil {
		panic(err)
	}
	r := s.r.(gin.IRouter).Group(ginPath, handler...)
	g := &route{
		opt:      s.opt,
		r:        r,
		basepath: joinPaths(s.basepath, path),
		group:    groupName(r.BasePath()),
	}
	if g.group != "" {
		s.opt.routes.addGroup(g.group)
	}
	return g
}

func (s *route) Handle(method, path string, handler ...any) Commenter {
	ginPath, err := extract.GinPath(path)
	if err != nil {
		panic(err)
	}
	hs := make([]gin.HandlerFunc, len(handler))
	var rpc any
	for i, h := range handler {
		switch f := h.(type) {
		case gin.HandlerFunc:
			hs[i] = f
		case func(*gin.Context):
			hs[i] = f
		default:
			if rpc != nil {
				panic("handle only support one rpc handler")
			}
			rpc = h
			// 使用handleWarpf 转为gin.HandleFunc
			hs[i] = handleWarpf(s.opt)(h)
		}
	}
	s.r.Handle(method, ginPath, hs...)

	// 添加到路由信息表 为了自动生成doc
	// 没有rpc handler时使用最后一个gin handler
	if rpc == nil && len(handler) > 0 {
		rpc = handler[len(handler)-1]
	}
	if rpc == nil {
		return noopCommenter{}
	}
	h := s.opt.routes.Add(method, joinPaths(s.basepath, path), s.group, rpc)
	return &handleCommenter{opt: s.opt, id: h.ID}
}

type handleCommenter struct {
	opt *option
	id  mark.ID
}

func (c *handleCommenter) Comment(v string) {
	c.Mark(mark.Description(v))
}

func (c *handleCommenter) Mark(anns ...mark.Annotation) {
	if c.opt.marks == nil {
		return
	}
	c.opt.marks.MustMark(c.id, anns...)
}

type noopCommenter struct{}

func (noopCommenter) Comment(string) {}

func (noopCommenter) Mark(...mark.Annotation) {}
