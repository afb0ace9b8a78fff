package code

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type CodeError struct {
	Code    int
	Message string
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

// Is 状态码相同即认为相同
func (e *CodeError) Is(target error) bool {
	var t *CodeError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func NewCodeError(code int, msg string, args ...any) error {
	if code == 0 {
		code = http.StatusInternalServerError
	}
	return &CodeError{code, fmt.Sprintf(msg, args...)}
}

// NewBadRequestError 请求参数错误
func NewBadRequestError(v any) error {
	var fe validator.ValidationErrors
	if err, ok := v.(error); ok && errors.As(err, &fe) {
		if len(fe) > 0 {
			e := fe[0]
			v = fmt.Sprintf("Requirement %s %s %s", e.StructField(), e.Tag(), e.Param())
		}
	}
	return &CodeError{
		http.StatusBadRequest,
		fmt.Sprintf("%v", v),
	}
}

// NewUnauthorizedError 请求需要通过身份验证
func NewUnauthorizedError(v any) error {
	return &CodeError{
		http.StatusUnauthorized,
		fmt.Sprintf("%v", v),
	}
}

// NewForbiddenError 拒绝访问 即使通过了身份验证 （权限，未授权IP等）
func NewForbiddenError(v any) error {
	return &CodeError{
		http.StatusForbidden,
		fmt.Sprintf("%v", v),
	}
}

// NewNotfoundError 服务器上没有请求的资源。路径错误等。
func NewNotfoundError(v any) error {
	return &CodeError{
		http.StatusNotFound,
		fmt.Sprintf("%v", v),
	}
}

// NewInternalError 服务内部错误 保留原始错误信息
func NewInternalError(err error) error {
	return &CodeError{
		http.StatusInternalServerError,
		err.Error(),
	}
}
