package mark

import (
	"fmt"
	"strconv"

	"github.com/parkingwang/swag/pkg/merge"
	"github.com/parkingwang/swag/pkg/oas"
)

// Annotation 对handler元数据的一次修改
type Annotation func(s *Store, id ID) error

// Swag 浅覆盖顶层字段
func Swag(fragment oas.Node) Annotation {
	return func(s *Store, id ID) error {
		s.Update(id, fragment)
		return nil
	}
}

// Merge 深度合并任意片段
func Merge(fragment oas.Node) Annotation {
	return func(s *Store, id ID) error {
		s.MergeIn(id, fragment)
		return nil
	}
}

// Unmark 删除字段
func Unmark(fields ...string) Annotation {
	return func(s *Store, id ID) error {
		s.Remove(id, fields...)
		return nil
	}
}

func Summary(text string) Annotation {
	return Merge(oas.Node{oas.FieldSummary: text})
}

// Description 去除公共缩进后作为描述
func Description(text string) Annotation {
	return Merge(oas.Node{oas.FieldDescription: oas.NormalizeIndent(text)})
}

func Tags(tags ...string) Annotation {
	return func(s *Store, id ID) error {
		return appendList(s, id, oas.FieldTags, stringsToAny(tags)...)
	}
}

func OperationID(v string) Annotation {
	return Merge(oas.Node{oas.FieldOperationID: v})
}

func Deprecated() Annotation {
	return Merge(oas.Node{"deprecated": true})
}

func Consumes(mimes ...string) Annotation {
	return Merge(oas.Node{"consumes": stringsToAny(mimes)})
}

func Produces(mimes ...string) Annotation {
	return Merge(oas.Node{"produces": stringsToAny(mimes)})
}

// Parameter 追加一个参数
func Parameter(fields oas.Fields) Annotation {
	return func(s *Store, id ID) error {
		p, err := oas.Parameter.Build(fields, s.buildOptions()...)
		if err != nil {
			return err
		}
		return appendList(s, id, oas.FieldParameters, p)
	}
}

// Schema 将object schema展开为多个参数 in为空时使用formData
func Schema(schema oas.SchemaSource, in string) Annotation {
	if in == "" {
		in = oas.InFormData
	}
	return func(s *Store, id ID) error {
		n, err := s.resolveSchema(schema)
		if err != nil {
			return err
		}
		params, err := oas.ObjectSchemaToParameters(n, in, s.buildOptions()...)
		if err != nil {
			return err
		}
		items := make([]any, len(params))
		for i, p := range params {
			items[i] = p
		}
		return appendList(s, id, oas.FieldParameters, items...)
	}
}

// Body 整个schema作为body参数
func Body(name string, schema oas.SchemaSource, description string) Annotation {
	return func(s *Store, id ID) error {
		n, err := s.resolveSchema(schema)
		if err != nil {
			return err
		}
		fields := oas.Fields{
			oas.FieldName:     name,
			oas.FieldIn:       oas.InBody,
			oas.FieldRequired: true,
			oas.FieldSchema:   n,
		}
		if description != "" {
			fields[oas.FieldDescription] = description
		}
		return Parameter(fields)(s, id)
	}
}

// Response 声明响应
// schema 可以为空 headers 为 header名称 -> Header节点
func Response(status any, description string, schema oas.SchemaSource, headers map[string]oas.Node) Annotation {
	return func(s *Store, id ID) error {
		fields := oas.Fields{oas.FieldDescription: description}
		if !schema.IsZero() {
			n, err := s.resolveSchema(schema)
			if err != nil {
				return err
			}
			fields[oas.FieldSchema] = n
		}
		if len(headers) > 0 {
			hs := make(map[string]any, len(headers))
			for name, h := range headers {
				hn, err := oas.Header.Build(h, s.buildOptions()...)
				if err != nil {
					return err
				}
				hs[name] = hn
			}
			fields[oas.FieldHeaders] = hs
		}
		return storeResponse(s, id, status, fields)
	}
}

// ResponseObject 使用完整的响应片段声明响应
func ResponseObject(status any, resp oas.Node) Annotation {
	return func(s *Store, id ID) error {
		return storeResponse(s, id, status, resp)
	}
}

func storeResponse(s *Store, id ID, status any, fields oas.Fields) error {
	key, err := StatusKey(status)
	if err != nil {
		return err
	}
	r, err := oas.Response.Build(fields, s.buildOptions()...)
	if err != nil {
		return err
	}
	s.MergeIn(id, oas.Node{
		oas.FieldResponses: map[string]any{key: r},
	})
	return nil
}

// StatusKey 响应的key 整数状态码或default
func StatusKey(status any) (string, error) {
	switch v := status.(type) {
	case int:
		return strconv.Itoa(v), nil
	case string:
		if v == oas.ResponseDefault {
			return v, nil
		}
		if _, err := strconv.Atoi(v); err == nil {
			return v, nil
		}
	}
	return "", fmt.Errorf("mark: invalid response status %v", status)
}

// SimpleParam 简单类型的参数
// kind无法识别时参数不包含type/format 可以通过extra补充
func SimpleParam(in, name string, kind oas.Kind, optional bool, extra oas.Fields) Annotation {
	fields := oas.Fields{}
	if base, ok := oas.BaseFragment(kind); ok {
		for k, v := range base {
			fields[k] = v
		}
	}
	fields[oas.FieldName] = name
	fields[oas.FieldIn] = in
	fields[oas.FieldRequired] = !optional
	for k, v := range extra {
		fields[k] = v
	}
	return Parameter(fields)
}

// Query 查询参数
func Query(name string, kind oas.Kind, optional bool, extra ...oas.Fields) Annotation {
	return SimpleParam(oas.InQuery, name, kind, optional, mergeExtra(extra))
}

// Form 表单参数
func Form(name string, kind oas.Kind, optional bool, extra ...oas.Fields) Annotation {
	return SimpleParam(oas.InFormData, name, kind, optional, mergeExtra(extra))
}

// Header 请求头参数
func Header(name string, kind oas.Kind, optional bool, extra ...oas.Fields) Annotation {
	return SimpleParam(oas.InHeader, name, kind, optional, mergeExtra(extra))
}

// Path 路径参数 总是必填
func Path(name string, kind oas.Kind, extra ...oas.Fields) Annotation {
	return SimpleParam(oas.InPath, name, kind, false, mergeExtra(extra))
}

func mergeExtra(extra []oas.Fields) oas.Fields {
	out := oas.Fields{}
	for _, e := range extra {
		for k, v := range e {
			out[k] = v
		}
	}
	return out
}

// appendList 通过合并追加到列表末尾
// 已有部分与自身合并保持不变 新元素作为尾部追加
func appendList(s *Store, id ID, field string, items ...any) error {
	s.modify(id, func(current oas.Node) oas.Node {
		existing, _ := oas.AsList(current[field])
		next := make([]any, 0, len(existing)+len(items))
		next = append(next, existing...)
		next = append(next, items...)
		return merge.Maps(current, oas.Node{field: next})
	})
	return nil
}

func stringsToAny(v []string) []any {
	out := make([]any, len(v))
	for i, s := range v {
		out[i] = s
	}
	return out
}
