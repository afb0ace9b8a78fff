package oas

import (
	"strings"
	"unicode"
)

// Node 文档节点
// 字段名使用内部名称(如 in_ base_path) 序列化时再转换为wire名称
// 约定构造后不再修改 需要修改时使用merge生成新节点
type Node = map[string]any

// Fields 构造节点时传入的字段
type Fields = map[string]any

// Wire 序列化后可直接输出为json的文档
type Wire = map[string]any

type shape int

const (
	shapeRaw shape = iota
	// 嵌套节点
	shapeNode
	// 节点列表
	shapeNodeList
	// key -> 节点
	shapeNodeMap
)

// Field 节点字段的描述
type Field struct {
	Name     string
	Wire     string
	Required bool
	Default  any
	shape    shape
	node     *NodeType
	self     bool
}

// WireName 序列化后的字段名
func (f *Field) WireName() string {
	if f.Wire != "" {
		return f.Wire
	}
	return f.Name
}

func (f *Field) elem(owner *NodeType) *NodeType {
	if f.self {
		return owner
	}
	return f.node
}

// NodeType 节点类型 由字段表定义
type NodeType struct {
	name   string
	fields []*Field
	index  map[string]*Field
}

func newNodeType(name string, fields ...*Field) *NodeType {
	t := &NodeType{name: name}
	t.define(fields...)
	return t
}

func (t *NodeType) define(fields ...*Field) {
	t.fields = fields
	t.index = make(map[string]*Field, len(fields))
	for _, f := range fields {
		t.index[f.Name] = f
	}
}

// Name 节点类型名称
func (t *NodeType) Name() string { return t.name }

// Field 按内部名称查找字段
func (t *NodeType) Field(name string) (*Field, bool) {
	f, ok := t.index[name]
	return f, ok
}

// Fields 字段表 顺序与定义一致
func (t *NodeType) Fields() []*Field {
	return t.fields
}

// snake_case 自动转换为 camelCase
func raw(name string) *Field {
	return &Field{Name: name, Wire: camel(name)}
}

func required(name string) *Field {
	return mandatory(raw(name))
}

func mandatory(f *Field) *Field {
	f.Required = true
	return f
}

func nested(name string, t *NodeType) *Field {
	return &Field{Name: name, Wire: camel(name), shape: shapeNode, node: t}
}

func nestedList(name string, t *NodeType) *Field {
	return &Field{Name: name, Wire: camel(name), shape: shapeNodeList, node: t}
}

func nestedMap(name string, t *NodeType) *Field {
	return &Field{Name: name, Wire: camel(name), shape: shapeNodeMap, node: t}
}

func self(f *Field) *Field {
	f.self = true
	return f
}

func renamed(f *Field, wire string) *Field {
	f.Wire = wire
	return f
}

func withDefault(f *Field, v any) *Field {
	f.Default = v
	return f
}

func camel(name string) string {
	name = strings.TrimRight(name, "_")
	parts := strings.Split(name, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		r := []rune(parts[i])
		r[0] = unicode.ToUpper(r[0])
		parts[i] = string(r)
	}
	return strings.Join(parts, "")
}
