package web

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// 请求结构体中会自动绑定的tag
// 与文档生成时参数位置的推断保持一致 见 extract.Bound
var autoBindTags = []string{"header", "json", "form", "uri"}

func deepfindTags(t reflect.Type, m map[string]bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			deepfindTags(field.Type, m)
			continue
		}
		for _, v := range autoBindTags {
			if _, ok := field.Tag.Lookup(v); ok {
				m[v] = true
			}
		}
	}
}

// checkReqParam 绑定顺序 header -> query(非GET的json请求) -> body/query -> uri
func checkReqParam(ctx *gin.Context, obj any, tags map[string]bool) error {
	binders := make([]func(any) error, 0, 4)
	if tags["header"] {
		binders = append(binders, ctx.ShouldBindHeader)
	}
	// query使用form的字段 并且只能在GET的时候用
	// 当请求是json时 tag:form 的query参数需要单独绑定
	if tags["form"] && ctx.Request.Method != http.MethodGet && ctx.ContentType() == binding.MIMEJSON {
		binders = append(binders, ctx.ShouldBindQuery)
	}
	binders = append(binders, ctx.ShouldBind)
	// uri 优先级最高 放到最后防止被覆盖
	if tags["uri"] && len(ctx.Params) > 0 {
		binders = append(binders, ctx.ShouldBindUri)
	}
	for _, bind := range binders {
		if err := bind(obj); err != nil {
			return err
		}
	}
	return nil
}
