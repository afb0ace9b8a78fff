// Package merge 合并嵌套的map/slice结构
package merge

import (
	"reflect"
)

// Merge 合并src到dest 不修改任何参数
//
//   - 都是map: key取并集 同时存在的key递归合并
//   - 都是slice: 重叠部分逐项递归合并 再追加较长一方多出的部分
//   - 其他情况: src覆盖dest
//
// key为string的map统一输出为 map[string]any slice统一输出为 []any
func Merge(dest, src any) any {
	if dm, ok := asMap(dest); ok {
		if sm, ok := asMap(src); ok {
			out := make(map[string]any, len(dm)+len(sm))
			for k, v := range dm {
				if sv, ok := sm[k]; ok {
					out[k] = Merge(v, sv)
				} else {
					out[k] = Clone(v)
				}
			}
			for k, v := range sm {
				if _, ok := dm[k]; !ok {
					out[k] = Clone(v)
				}
			}
			return out
		}
	}
	if dl, ok := asList(dest); ok {
		if sl, ok := asList(src); ok {
			n := min(len(dl), len(sl))
			out := make([]any, 0, max(len(dl), len(sl)))
			for i := 0; i < n; i++ {
				out = append(out, Merge(dl[i], sl[i]))
			}
			tail := sl[n:]
			if len(dl) > len(sl) {
				tail = dl[n:]
			}
			for _, v := range tail {
				out = append(out, Clone(v))
			}
			return out
		}
	}
	return Clone(src)
}

// Maps 合并两个map 结果一定是map
func Maps(dest, src map[string]any) map[string]any {
	if dest == nil {
		dest = map[string]any{}
	}
	if src == nil {
		return Clone(dest).(map[string]any)
	}
	return Merge(dest, src).(map[string]any)
}

// Clone 深拷贝map和slice 其他值原样返回
func Clone(v any) any {
	if m, ok := asMap(v); ok {
		out := make(map[string]any, len(m))
		for k, item := range m {
			out[k] = Clone(item)
		}
		return out
	}
	if l, ok := asList(v); ok {
		out := make([]any, len(l))
		for i, item := range l {
			out[i] = Clone(item)
		}
		return out
	}
	return v
}

func asMap(v any) (map[string]any, bool) {
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

// []byte 作为标量处理
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []byte, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
