package oas

import (
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind 值的语义类型
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindBytes
	KindInteger
	KindFloat
	KindBoolean
	KindDate
	KindDateTime
	KindTime
	KindDuration
	KindUUID
	KindDecimal
	KindObject
	KindArray
	KindSet
	KindTuple
)

const (
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeObject  = "object"
	TypeArray   = "array"

	FormatInt32    = "int32"
	FormatInt64    = "int64"
	FormatFloat    = "float"
	FormatDecimal  = "decimal"
	FormatDate     = "date"
	FormatDateTime = "date-time"
	FormatTime     = "time"
	FormatUUID     = "uuid"
)

var kindNames = map[Kind]string{
	KindString:   "string",
	KindBytes:    "bytes",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindBoolean:  "boolean",
	KindDate:     "date",
	KindDateTime: "datetime",
	KindTime:     "time",
	KindDuration: "duration",
	KindUUID:     "uuid",
	KindDecimal:  "decimal",
	KindObject:   "object",
	KindArray:    "array",
	KindSet:      "set",
	KindTuple:    "tuple",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

type fragment struct {
	typ    string
	format string
}

var baseFragments = map[Kind]fragment{
	KindObject:   {typ: TypeObject},
	KindArray:    {typ: TypeArray},
	KindSet:      {typ: TypeArray},
	KindTuple:    {typ: TypeArray},
	KindTime:     {typ: TypeString, format: FormatTime},
	KindDuration: {typ: TypeString},
	KindDateTime: {typ: TypeString, format: FormatDateTime},
	KindDate:     {typ: TypeString, format: FormatDate},
	KindUUID:     {typ: TypeString, format: FormatUUID},
	KindString:   {typ: TypeString},
	KindBytes:    {typ: TypeString},
	KindDecimal:  {typ: TypeNumber, format: FormatDecimal},
	KindFloat:    {typ: TypeNumber, format: FormatFloat},
	KindInteger:  {typ: TypeInteger},
	KindBoolean:  {typ: TypeBoolean},
}

// BaseFragment 返回kind对应的 {type, format} 片段
// 每次返回新的map 调用方可以随意修改
// 未知的kind返回false 表示无法推断类型 不是错误
func BaseFragment(k Kind) (Node, bool) {
	f, ok := baseFragments[k]
	if !ok {
		return nil, false
	}
	n := Node{FieldType: f.typ}
	if f.format != "" {
		n[FieldFormat] = f.format
	}
	return n, true
}

var (
	rtypeTime     = reflect.TypeOf(time.Time{})
	rtypeDuration = reflect.TypeOf(time.Duration(0))
	rtypeUUID     = reflect.TypeOf(uuid.UUID{})
	rtypeDecimal  = reflect.TypeOf(decimal.Decimal{})
	rtypeBytes    = reflect.TypeOf([]byte(nil))
)

// KindOf 将go类型映射到语义类型
func KindOf(t reflect.Type) Kind {
	if t == nil {
		return KindUnknown
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case rtypeTime:
		return KindDateTime
	case rtypeDuration:
		return KindDuration
	case rtypeUUID:
		return KindUUID
	case rtypeDecimal:
		return KindDecimal
	case rtypeBytes:
		return KindBytes
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Struct, reflect.Map:
		return KindObject
	case reflect.Slice:
		return KindArray
	case reflect.Array:
		return KindTuple
	}
	return KindUnknown
}
