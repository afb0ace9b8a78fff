package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkingwang/swag"
	"github.com/parkingwang/swag/pkg/http/code"
	"github.com/parkingwang/swag/pkg/http/web"
	"github.com/parkingwang/swag/pkg/mark"
	"github.com/parkingwang/swag/pkg/oas"
)

var info = swag.AppInfo{
	Name:        "user-service",
	Description: "这是一个演示",
}

func main() {
	swag.SetConfig("config.yaml")
	app := swag.New(info)

	app.Run(
		// web服务
		// 文档地址 /debug/doc
		func() swag.Servicer {
			srv := app.CreateWebServer()
			initRoutes(srv)
			return srv
		},
	)
}

func initRoutes(srv *web.Server) {
	r := srv.Router()

	r.Get("/", Hello)
	user := r.Group("/user")
	user.Comment("user object")
	user.Get("/", middleGinHandler, ListUser).Mark(
		mark.Summary("User index."),
		mark.Response(http.StatusOK, "List of users.", oas.ImportFrom(oas.ImportStruct, UserInfoListResponse{}), nil),
	)
	user.Get("/<int:id>", GetUser).Comment("测试用 id 可以是 1,2,3,4 试试换成不同的值看看")
	user.Post("/<int:id>/add", CreateUser).Mark(
		mark.Header("X-Request-Id", oas.KindUUID, true),
		mark.Tags("user", "admin"),
	)
	user.Delete("/:id", DeleteUser).Mark(mark.Deprecated())
}

// UserInfo 用户信息
type UserInfo struct {
	ID   int    `json:"id" uri:"id"`
	Name string `json:"name" form:"name" comment:"备注再这里"`
}

// UserInfoListResponse 用户信息列表
type UserInfoListResponse struct {
	Items []UserInfo `json:"items"`
}

// UserInfoListRequest 请求
type UserInfoListRequest struct {
	Page     int    `form:"page" binding:"gte=0" comment:"第几页"`
	PageSize int    `form:"pageSize" binding:"gte=0,lte=100" comment:"每页条数"`
	Keyword  string `form:"keyword" comment:"按指定关键字查询"`
}

// ListUser 用户列表
//
// 支持分页和关键字查询
func ListUser(ctx context.Context, in *UserInfoListRequest) (*UserInfoListResponse, error) {
	slog.InfoContext(ctx, "get users", "count", len(userlist))
	if v := ctx.Value("value"); v != nil {
		slog.InfoContext(ctx, "get middle value", "value", v)
	}
	return &UserInfoListResponse{Items: userlist}, nil
}

var userlist = []UserInfo{
	{1, "afocus"},
	{2, "umiko"},
	{3, "tom"},
	{4, "jack"},
}

type UserIDReq struct {
	ID int `uri:"id" binding:"required" comment:"用户id"`
}

// GetUser 获取单个用户
func GetUser(ctx context.Context, in *UserIDReq) (*UserInfo, error) {
	for _, user := range userlist {
		if user.ID == in.ID {
			return &user, nil
		}
	}
	return nil, code.NewNotfoundError("user not found")
}

// DeleteUser 删除用户
func DeleteUser(ctx context.Context, in *UserIDReq) error {
	return code.NewForbiddenError("readonly")
}

// Hello 通过使用gin.Context 可以突破rpc风格上的使用限制
func Hello(ctx context.Context, in *web.Empty) error {
	c, ok := web.GinContext(ctx)
	if ok {
		c.String(http.StatusOK, "hello,world")
	}
	return nil
}

// CreateUser 创建用户
func CreateUser(ctx context.Context, in *UserInfo) (*UserInfo, error) {
	return in, nil
}

// 一个gin风格的中间件
func middleGinHandler(c *gin.Context) {
	// 传递值
	c.Set("value", "123")
	slog.InfoContext(c, "start")
	c.Next()
	slog.InfoContext(c, "end")
}
