package oas

import (
	"fmt"
	"slices"
	"sort"
)

// ObjectSchemaToParameters 将object schema的每个属性展开为参数
// schema.type 不是object时返回空
// 结果按参数名排序
func ObjectSchemaToParameters(schema Node, in string, opts ...BuildOption) ([]Node, error) {
	if schema[FieldType] != TypeObject {
		return nil, nil
	}
	properties, _ := AsMap(schema[FieldProperties])
	var requiredNames []string
	if l, ok := AsList(schema[FieldRequired]); ok {
		for _, v := range l {
			if s, ok := v.(string); ok {
				requiredNames = append(requiredNames, s)
			}
		}
	}

	params := make([]Node, 0, len(properties))
	for name, prop := range properties {
		fields := Fields{}
		// properties为wire格式 如 maxLength
		if m, ok := AsMap(prop); ok {
			for k, v := range Deserialize(Parameter, m) {
				fields[k] = v
			}
		}
		// 位置相关字段以参数为准 嵌套object的required是列表
		fields[FieldName] = name
		fields[FieldIn] = in
		fields[FieldRequired] = slices.Contains(requiredNames, name)
		p, err := Parameter.Build(fields, opts...)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	sort.SliceStable(params, func(i, j int) bool {
		return paramName(params[i]) < paramName(params[j])
	})
	return params, nil
}

func paramName(p Node) string {
	s, _ := p[FieldName].(string)
	return s
}

// CheckParameters 检查同一位置的参数是否重名
// 仅用于诊断 不影响文档生成
func CheckParameters(params []any) error {
	seen := make(map[string]struct{}, len(params))
	for _, v := range params {
		p, ok := AsMap(v)
		if !ok {
			continue
		}
		in, _ := p[FieldIn].(string)
		key := in + ":" + paramName(p)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateParameterName, paramName(p), in)
		}
		seen[key] = struct{}{}
	}
	return nil
}
