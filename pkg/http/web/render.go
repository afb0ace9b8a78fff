package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkingwang/swag/pkg/http/code"
	"github.com/parkingwang/swag/pkg/oas"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Renderer 渲染响应
type Renderer func(*gin.Context, any, error)

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Message string `json:"message"`
	TraceID string `json:"traceid"`
}

// DefaultRender 默认渲染 错误统一转为 *code.CodeError
func DefaultRender(c *gin.Context, data any, err error) {
	if err == nil {
		if data != nil {
			c.JSON(http.StatusOK, data)
		}
		return
	}
	ce := asCodeError(err)
	span := trace.SpanFromContext(c)
	span.SetStatus(codes.Error, err.Error())
	c.JSON(ce.Code, ErrorResponse{
		Message: ce.Message,
		TraceID: span.SpanContext().TraceID().String(),
	})
}

func asCodeError(err error) *code.CodeError {
	var ce *code.CodeError
	if errors.As(err, &ce) {
		return ce
	}
	return &code.CodeError{Code: http.StatusInternalServerError, Message: err.Error()}
}

// renderResult 记录错误信息供访问日志使用 再交给 Renderer
func renderResult(opt *option, c *gin.Context, data any, err error) {
	if err != nil {
		c.Set(responseErrKey, asCodeError(err).Message)
	}
	opt.render(c, data, err)
}

const responseErrKey = "gin.response.err"

type docFormat int

const (
	docJSON docFormat = iota
	docYAML
)

// renderDoc 序列化文档 失败时走 Renderer
func renderDoc(opt *option, c *gin.Context, w oas.Wire, f docFormat) {
	var (
		b           []byte
		err         error
		contentType string
	)
	switch f {
	case docYAML:
		b, err = oas.MarshalYAML(w)
		contentType = "application/yaml; charset=utf-8"
	default:
		b, err = oas.MarshalJSON(w, true)
		contentType = "application/json; charset=utf-8"
	}
	if err != nil {
		renderResult(opt, c, nil, code.NewInternalError(err))
		return
	}
	c.Data(http.StatusOK, contentType, b)
}
