package web

import (
	"reflect"

	"github.com/gin-gonic/gin"
)

// Handler ginhandler包裹器 负责将rpc模式转为gin handler
type Handler func(any) gin.HandlerFunc

// Empty 没有请求参数时使用
type Empty struct{}

var (
	rtypEempty = reflect.TypeOf(Empty{})
	rtypeError = reflect.TypeOf((*error)(nil)).Elem()
)
