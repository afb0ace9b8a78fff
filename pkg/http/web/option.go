package web

import (
	"github.com/parkingwang/swag/pkg/apidoc"
	"github.com/parkingwang/swag/pkg/mark"
)

type option struct {
	render          Renderer
	dumpRequestBody bool
	addr            string
	routes          *Routes
	marks           *mark.Store
	doc             *docOption
}

type docOption struct {
	prefix     string
	sourceDocs bool
	generator  []apidoc.Option
}

const defaultDocPrefix = "/debug/doc"

func defaultOption() *option {
	return &option{
		addr:   ":8080",
		render: DefaultRender,
		routes: NewRoutes(),
	}
}

type Option func(*option)

// WithResponseRender 自定义响应输出
func WithResponseRender(r Renderer) Option {
	return func(opt *option) {
		opt.render = r
	}
}

// WithDumpRequestBody 是否输出请求体
func WithDumpRequestBody(o bool) Option {
	return func(opt *option) {
		opt.dumpRequestBody = o
	}
}

func WithAddr(addr string) Option {
	return func(o *option) {
		o.addr = addr
	}
}

// WithMarkStore 路由的Comment以及文档生成使用的标记
func WithMarkStore(s *mark.Store) Option {
	return func(o *option) {
		o.marks = s
	}
}

// WithOpenAPI 开启swagger文档
func WithOpenAPI(opts ...apidoc.Option) Option {
	return func(o *option) {
		if o.doc == nil {
			o.doc = &docOption{prefix: defaultDocPrefix}
		}
		o.doc.generator = append(o.doc.generator, opts...)
	}
}

// WithDocPrefix 文档路由前缀 默认 /debug/doc
func WithDocPrefix(prefix string) Option {
	return func(o *option) {
		if o.doc == nil {
			o.doc = &docOption{}
		}
		if prefix == "" {
			prefix = defaultDocPrefix
		}
		o.doc.prefix = prefix
	}
}

// WithSourceDocs 从源码读取handler的文档注释
func WithSourceDocs(v bool) Option {
	return func(o *option) {
		if o.doc == nil {
			o.doc = &docOption{prefix: defaultDocPrefix}
		}
		o.doc.sourceDocs = v
	}
}
