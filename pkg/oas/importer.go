package oas

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	schemacheck "github.com/santhosh-tekuri/jsonschema/v5"
)

// Importer 将外部的schema对象转换为swagger schema节点
type Importer interface {
	Import(v any) (Node, error)
}

// ImporterFunc 函数形式的Importer
type ImporterFunc func(v any) (Node, error)

func (f ImporterFunc) Import(v any) (Node, error) {
	return f(v)
}

// 内置的importer名称
const (
	ImportStruct     = "struct"
	ImportJSONSchema = "jsonschema"
)

// SchemaSource 带标签的schema输入
// 原始schema直接使用 其他来源需要经过对应的Importer转换
type SchemaSource struct {
	system string
	value  any
}

// RawSchema 原始的schema节点
func RawSchema(n Node) SchemaSource {
	return SchemaSource{value: n}
}

// ImportFrom 需要经过system对应的Importer转换的schema
func ImportFrom(system string, v any) SchemaSource {
	return SchemaSource{system: system, value: v}
}

// IsZero 未设置schema
func (s SchemaSource) IsZero() bool {
	return s.system == "" && isNil(s.value)
}

// IsRaw 是否为原始schema
func (s SchemaSource) IsRaw() bool {
	return s.system == ""
}

// System 来源名称 原始schema为空
func (s SchemaSource) System() string {
	return s.system
}

// Resolve 解析为schema节点
func (s SchemaSource) Resolve(importers map[string]Importer) (Node, error) {
	if s.IsRaw() {
		m, ok := AsMap(s.value)
		if !ok {
			return nil, fmt.Errorf("oas: raw schema must be a mapping, got %T", s.value)
		}
		return m, nil
	}
	imp, ok := importers[s.system]
	if !ok || imp == nil {
		return nil, fmt.Errorf("%w: %s", ErrImporterUnavailable, s.system)
	}
	return imp.Import(s.value)
}

// StructImporter 通过反射go结构体生成schema
// 字段名取Tag指定的标签 comment标签作为描述 binding:"required" 作为必填
type StructImporter struct {
	Tag string
}

func (imp StructImporter) Import(v any) (Node, error) {
	tag := imp.Tag
	if tag == "" {
		tag = "json"
	}
	rv, ok := v.(reflect.Value)
	if !ok {
		if t, isType := v.(reflect.Type); isType {
			rv = reflect.New(t)
		} else {
			rv = reflect.ValueOf(v)
		}
	}
	if !rv.IsValid() {
		return nil, fmt.Errorf("oas: cannot import schema from %T", v)
	}
	out := parseDeep(rv, "schema", tag, map[string]Node{})
	s, ok := out["schema"]
	if !ok {
		return nil, fmt.Errorf("oas: cannot import schema from %s", rv.Type())
	}
	return s, nil
}

func parseDeep(v reflect.Value, name, tag string, out map[string]Node) map[string]Node {
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			return parseDeep(v.Elem(), name, tag, out)
		}
		return parseDeep(reflect.New(v.Type().Elem()), name, tag, out)
	case reflect.Interface:
		out[name] = Node{FieldType: TypeObject}
		return out
	}

	switch k := KindOf(v.Type()); k {
	case KindObject:
		if v.Kind() == reflect.Map {
			p := Node{FieldType: TypeObject, "additional_properties": true}
			out[name] = p
			return out
		}
		p := Node{FieldType: TypeObject}
		props := map[string]Node{}
		var requiredNames []string
		parseStruct(v.Type(), tag, props, &requiredNames)
		if len(props) > 0 {
			p[FieldProperties] = props
		}
		if len(requiredNames) > 0 {
			p[FieldRequired] = requiredNames
		}
		out[name] = p
	case KindArray, KindTuple:
		p := Node{FieldType: TypeArray}
		items := parseDeep(reflect.New(v.Type().Elem()), "items", tag, map[string]Node{})
		if it, ok := items["items"]; ok {
			p[FieldItems] = it
		}
		out[name] = p
	default:
		if f, ok := BaseFragment(k); ok {
			if k == KindInteger {
				switch v.Kind() {
				case reflect.Int32, reflect.Uint32:
					f[FieldFormat] = FormatInt32
				case reflect.Int64, reflect.Uint64:
					f[FieldFormat] = FormatInt64
				}
			}
			out[name] = f
		}
	}
	return out
}

func parseStruct(t reflect.Type, tag string, props map[string]Node, requiredNames *[]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				parseStruct(ft, tag, props, requiredNames)
			}
			continue
		}
		x, ok := field.Tag.Lookup(tag)
		if !ok {
			continue
		}
		x = strings.TrimSpace(strings.Split(x, ",")[0])
		if x == "-" || x == "" {
			continue
		}
		sub := parseDeep(reflect.New(field.Type), x, tag, map[string]Node{})
		p, ok := sub[x]
		if !ok {
			continue
		}
		if comment := field.Tag.Get("comment"); comment != "" {
			p[FieldDescription] = comment
		}
		if strings.Split(field.Tag.Get("binding"), ",")[0] == "required" {
			*requiredNames = append(*requiredNames, x)
		}
		props[x] = SerializeAs(Schema, p)
	}
}

// JSONSchemaImporter 使用 invopop/jsonschema 反射生成schema
type JSONSchemaImporter struct {
	Reflector *jsonschema.Reflector
}

func (imp JSONSchemaImporter) Import(v any) (Node, error) {
	r := imp.Reflector
	if r == nil {
		r = &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	}
	var s *jsonschema.Schema
	switch t := v.(type) {
	case *jsonschema.Schema:
		s = t
	case reflect.Type:
		s = r.ReflectFromType(t)
	default:
		s = r.Reflect(v)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var w map[string]any
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	return Deserialize(Schema, w), nil
}

// Deserialize 将wire格式的节点转换为内部字段名 未定义的字段被忽略
func Deserialize(t *NodeType, w map[string]any) Node {
	if w == nil {
		return nil
	}
	out := make(Node, len(w))
	for _, f := range t.fields {
		v, ok := w[f.WireName()]
		if !ok {
			continue
		}
		elem := f.elem(t)
		switch f.shape {
		case shapeNode:
			if m, ok := AsMap(v); ok {
				v = Deserialize(elem, m)
			}
		case shapeNodeList:
			if l, ok := AsList(v); ok {
				items := make([]any, len(l))
				for i, item := range l {
					if m, ok := AsMap(item); ok {
						items[i] = Deserialize(elem, m)
					} else {
						items[i] = item
					}
				}
				v = items
			}
		case shapeNodeMap:
			if m, ok := AsMap(v); ok {
				items := make(map[string]any, len(m))
				for k, item := range m {
					if im, ok := AsMap(item); ok {
						items[k] = Deserialize(elem, im)
					} else {
						items[k] = item
					}
				}
				v = items
			}
		}
		out[f.Name] = v
	}
	return out
}

// CheckSchema 检查schema能否作为json schema编译
func CheckSchema(n Node) error {
	b, err := json.Marshal(SerializeAs(Schema, n))
	if err != nil {
		return err
	}
	const url = "schema.json"
	c := schemacheck.NewCompiler()
	if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("oas: invalid schema: %w", err)
	}
	if _, err := c.Compile(url); err != nil {
		return fmt.Errorf("oas: invalid schema: %w", err)
	}
	return nil
}
