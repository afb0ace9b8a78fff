package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/parkingwang/swag/pkg/oas"
)

var (
	// ErrInvalidRule 路由模板无法解析
	ErrInvalidRule = errors.New("invalid route rule")
)

// PathParam 路由模板中的一个占位符
type PathParam struct {
	Name string
	// 转换器 gin风格的 :name 没有转换器
	Converter string
	Args      []any
	Kwargs    map[string]any
}

// converterKinds 转换器对应的语义类型
var converterKinds = map[string]oas.Kind{
	"string":  oas.KindString,
	"default": oas.KindString,
	"any":     oas.KindString,
	"path":    oas.KindString,
	"uuid":    oas.KindString,
	"int":     oas.KindInteger,
	"float":   oas.KindFloat,
}

// ConverterKind 转换器对应的语义类型 未知转换器返回false
func ConverterKind(converter string) (oas.Kind, bool) {
	k, ok := converterKinds[converter]
	return k, ok
}

// ParseRule 解析路由模板 返回 {name} 形式的路径以及按出现顺序排列的占位符
//
// 支持的写法:
//
//	/users/<int:user_id>     转换器
//	/files/<path:name>
//	/items/<any(a, b):kind>  转换器参数
//	/users/<user_id>         等同 <default:user_id>
//	/users/:user_id          gin
//	/static/*filepath        gin 等同 <path:filepath>
func ParseRule(rule string) (string, []PathParam, error) {
	var (
		buf    strings.Builder
		params []PathParam
		seen   = map[string]struct{}{}
	)
	add := func(p PathParam) error {
		if p.Name == "" {
			return fmt.Errorf("%w %q: empty placeholder name", ErrInvalidRule, rule)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("%w %q: duplicate placeholder %q", ErrInvalidRule, rule, p.Name)
		}
		seen[p.Name] = struct{}{}
		params = append(params, p)
		buf.WriteString("{" + p.Name + "}")
		return nil
	}

	for i := 0; i < len(rule); {
		c := rule[i]
		switch {
		case c == '<':
			end := strings.IndexByte(rule[i:], '>')
			if end < 0 {
				return "", nil, fmt.Errorf("%w %q: unclosed placeholder", ErrInvalidRule, rule)
			}
			p, err := parsePlaceholder(rule[i+1 : i+end])
			if err != nil {
				return "", nil, fmt.Errorf("%w %q: %v", ErrInvalidRule, rule, err)
			}
			if err := add(p); err != nil {
				return "", nil, err
			}
			i += end + 1
		case (c == ':' || c == '*') && (i == 0 || rule[i-1] == '/'):
			end := strings.IndexByte(rule[i:], '/')
			if end < 0 {
				end = len(rule) - i
			}
			p := PathParam{Name: rule[i+1 : i+end]}
			if c == '*' {
				p.Converter = "path"
			}
			if err := add(p); err != nil {
				return "", nil, err
			}
			i += end
		default:
			buf.WriteByte(c)
			i++
		}
	}
	return buf.String(), params, nil
}

func parsePlaceholder(s string) (PathParam, error) {
	s = strings.TrimSpace(s)
	colon := strings.LastIndexByte(s, ':')
	if colon < 0 {
		return PathParam{Name: s, Converter: "default"}, nil
	}
	p := PathParam{Name: strings.TrimSpace(s[colon+1:])}
	conv := strings.TrimSpace(s[:colon])
	if open := strings.IndexByte(conv, '('); open >= 0 {
		if !strings.HasSuffix(conv, ")") {
			return p, fmt.Errorf("bad converter arguments %q", conv)
		}
		args, kwargs, err := parseConverterArgs(conv[open+1 : len(conv)-1])
		if err != nil {
			return p, err
		}
		p.Args, p.Kwargs = args, kwargs
		conv = strings.TrimSpace(conv[:open])
	}
	p.Converter = conv
	return p, nil
}

// parseConverterArgs 解析转换器参数 如 `'a', 'b', length=2`
func parseConverterArgs(s string) ([]any, map[string]any, error) {
	var (
		args   []any
		kwargs map[string]any
	)
	for _, part := range splitArgs(s) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if eq := strings.IndexByte(part, '='); eq > 0 && !isQuoted(part) {
			if kwargs == nil {
				kwargs = make(map[string]any)
			}
			kwargs[strings.TrimSpace(part[:eq])] = parseLiteral(strings.TrimSpace(part[eq+1:]))
			continue
		}
		if kwargs != nil {
			return nil, nil, fmt.Errorf("positional argument %q after keyword argument", part)
		}
		args = append(args, parseLiteral(part))
	}
	return args, kwargs, nil
}

func splitArgs(s string) []string {
	var (
		parts []string
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ',':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0]
}

func parseLiteral(s string) any {
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	switch s {
	case "True", "true":
		return true
	case "False", "false":
		return false
	case "None", "null":
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// GinPath 将路由模板转换为gin可以注册的路径
func GinPath(rule string) (string, error) {
	_, params, err := ParseRule(rule)
	if err != nil {
		return "", err
	}
	if len(params) == 0 {
		return rule, nil
	}
	var buf strings.Builder
	for i := 0; i < len(rule); {
		if rule[i] != '<' {
			buf.WriteByte(rule[i])
			i++
			continue
		}
		end := strings.IndexByte(rule[i:], '>')
		p, _ := parsePlaceholder(rule[i+1 : i+end])
		if p.Converter == "path" {
			buf.WriteString("*" + p.Name)
		} else {
			buf.WriteString(":" + p.Name)
		}
		i += end + 1
	}
	return buf.String(), nil
}
