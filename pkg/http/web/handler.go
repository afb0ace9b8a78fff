package web

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/parkingwang/swag/pkg/extract"
	"github.com/parkingwang/swag/pkg/http/code"
)

var errHandleType = errors.New("rpc handle must func(ctx context.Context, in *struct)(out *struct,err error) type")

// checkHandleValid 返回handler返回值的个数
// 一个返回值的话 必须是error
// 两个返回值 最后一个一定是error
func checkHandleValid(h any) (int, bool) {
	if _, ok := extract.RequestType(h); !ok {
		return 0, false
	}
	tp := reflect.TypeOf(h)
	switch n := tp.NumOut(); n {
	case 1:
		return 1, tp.Out(0).Implements(rtypeError)
	case 2:
		out, ok := extract.ResponseType(h)
		return 2, ok && out.Kind() == reflect.Ptr && out.Elem().Kind() == reflect.Struct
	default:
		return n, false
	}
}

// handleWarpf 将rpc模式转为gin.HandlerFunc
func handleWarpf(opt *option) Handler {
	valider := validator.New()
	valider.SetTagName("binding") // 兼容gin

	return func(iface any) gin.HandlerFunc {
		numOut, ok := checkHandleValid(iface)
		if !ok {
			panic(errHandleType)
		}
		method := reflect.ValueOf(iface)
		reqParamsType, _ := extract.RequestType(iface)

		tags := make(map[string]bool)
		deepfindTags(reqParamsType, tags)

		return func(ctx *gin.Context) {
			q := reflect.New(reqParamsType)
			if reqParamsType != rtypEempty && !ctx.GetBool(skipBindKey) {
				err := checkReqParam(ctx, q.Interface(), tags)
				if opt.dumpRequestBody {
					slog.InfoContext(ctx, "gin.dumpRequest",
						slog.String("data", fmt.Sprintf("%+v", q.Elem())),
					)
				}
				if err == nil {
					err = valider.Struct(q.Interface())
				}
				if err != nil {
					renderResult(opt, ctx, nil, code.NewBadRequestError(err))
					return
				}
			}

			ret := method.Call([]reflect.Value{reflect.ValueOf(ctx), q})
			if e := ret[numOut-1].Interface(); e != nil {
				renderResult(opt, ctx, nil, e.(error))
				return
			}
			if numOut == 2 {
				renderResult(opt, ctx, ret[0].Interface(), nil)
			}
		}
	}
}

const skipBindKey = "_swag_skip_bind"

// SkipBindRequest 跳过请求参数的绑定和校验
func SkipBindRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(skipBindKey, true)
	}
}
