package apidoc

import (
	"errors"
	"fmt"

	"github.com/parkingwang/swag/pkg/oas"
	"github.com/pb33f/libopenapi"
)

var (
	// ErrNotSwagger 文档不是swagger 2.0
	ErrNotSwagger = errors.New("document is not swagger 2.0")
)

// Verify 使用libopenapi解析文档并构建swagger 2.0模型
func Verify(data []byte) error {
	doc, err := libopenapi.NewDocument(data)
	if err != nil {
		return fmt.Errorf("apidoc: parse document: %w", err)
	}
	model, err := doc.BuildV2Model()
	if err != nil {
		return fmt.Errorf("apidoc: %w: %v", ErrNotSwagger, err)
	}
	if model == nil || model.Model.Info == nil {
		return fmt.Errorf("apidoc: %w: missing info", ErrNotSwagger)
	}
	return nil
}

// VerifyWire 序列化后校验
func VerifyWire(w oas.Wire) error {
	b, err := oas.MarshalJSON(w, false)
	if err != nil {
		return err
	}
	return Verify(b)
}
