package oas

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRequiredField 缺少必填字段
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrUnknownField 严格模式下出现未定义的字段
	ErrUnknownField = errors.New("unknown field")
	// ErrImporterUnavailable 未注册对应的schema转换器
	ErrImporterUnavailable = errors.New("schema importer unavailable")
	// ErrDuplicateParameterName 同一个operation中出现重名参数
	ErrDuplicateParameterName = errors.New("duplicate parameter name")
)

// FieldError 构造节点失败
type FieldError struct {
	Node  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("oas: %s: %v %q", e.Node, e.Err, e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
