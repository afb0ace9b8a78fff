package oas

import (
	"sort"
)

type buildOption struct {
	strict bool
}

// BuildOption 节点构造选项
type BuildOption func(*buildOption)

// Strict 严格模式 出现未定义字段时返回 ErrUnknownField
func Strict() BuildOption {
	return func(o *buildOption) {
		o.strict = true
	}
}

// StrictIf 按条件开启严格模式
func StrictIf(v bool) BuildOption {
	return func(o *buildOption) {
		o.strict = v
	}
}

// Build 构造节点
// 1. 未传入且定义了默认值的字段使用默认值
// 2. 缺少必填字段返回 ErrMissingRequiredField
// 3. 严格模式下出现未定义字段返回 ErrUnknownField 否则忽略该字段
//
// 传入的fields不会被修改
func (t *NodeType) Build(fields Fields, opts ...BuildOption) (Node, error) {
	opt := &buildOption{}
	for _, o := range opts {
		o(opt)
	}

	node := make(Node, len(fields))
	for _, f := range t.fields {
		if v, ok := fields[f.Name]; ok {
			node[f.Name] = v
		} else if f.Default != nil {
			node[f.Name] = f.Default
		}
	}

	for _, f := range t.fields {
		if !f.Required {
			continue
		}
		if _, ok := node[f.Name]; !ok {
			return nil, &FieldError{Node: t.name, Field: f.Name, Err: ErrMissingRequiredField}
		}
	}

	if opt.strict {
		// 排序保证错误信息稳定
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := t.index[k]; !ok {
				return nil, &FieldError{Node: t.name, Field: k, Err: ErrUnknownField}
			}
		}
	}
	return node, nil
}

// MustBuild 同Build 失败时panic
func (t *NodeType) MustBuild(fields Fields, opts ...BuildOption) Node {
	n, err := t.Build(fields, opts...)
	if err != nil {
		panic(err)
	}
	return n
}
