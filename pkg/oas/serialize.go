package oas

import (
	"reflect"

	json "github.com/goccy/go-json"
	"sigs.k8s.io/yaml"
)

// Serialize 将文档转换为wire格式
// 按字段表重命名 递归处理嵌套节点 值为nil或未定义的字段不会输出
func Serialize(doc Node) Wire {
	return serializeNode(Document, doc)
}

// SerializeAs 按指定节点类型序列化
func SerializeAs(t *NodeType, n Node) Wire {
	return serializeNode(t, n)
}

func serializeNode(t *NodeType, n map[string]any) Wire {
	if n == nil {
		return nil
	}
	out := make(Wire, len(n))
	for _, f := range t.fields {
		v, ok := n[f.Name]
		if !ok || isNil(v) {
			continue
		}
		out[f.WireName()] = serializeField(t, f, v)
	}
	return out
}

func serializeField(owner *NodeType, f *Field, v any) any {
	elem := f.elem(owner)
	switch f.shape {
	case shapeNode:
		if m, ok := AsMap(v); ok {
			return serializeNode(elem, m)
		}
	case shapeNodeList:
		if list, ok := AsList(v); ok {
			out := make([]any, 0, len(list))
			for _, item := range list {
				if m, ok := AsMap(item); ok {
					out = append(out, serializeNode(elem, m))
				} else {
					out = append(out, item)
				}
			}
			return out
		}
	case shapeNodeMap:
		if m, ok := AsMap(v); ok {
			out := make(map[string]any, len(m))
			for k, item := range m {
				if im, ok := AsMap(item); ok {
					out[k] = serializeNode(elem, im)
				} else {
					out[k] = item
				}
			}
			return out
		}
	}
	return v
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// AsMap 将任意key为string的map转换为 map[string]any
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// AsList 将任意slice转换为 []any
func AsList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// MarshalJSON 输出json map的key按字典序输出 同一文档多次输出结果一致
func MarshalJSON(w Wire, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(w, "", "  ")
	}
	return json.Marshal(w)
}

// MarshalYAML 输出yaml
func MarshalYAML(w Wire) ([]byte, error) {
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return yaml.JSONToYAML(b)
}
