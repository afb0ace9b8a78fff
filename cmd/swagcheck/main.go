// swagcheck 拉取运行中服务的swagger.json并校验
//
//	swagcheck -u http://127.0.0.1:8080/debug/doc/swagger.json
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/parkingwang/swag/pkg/apidoc"
	"github.com/parkingwang/swag/pkg/http/client"
	"github.com/sony/gobreaker/v2"
	"github.com/spf13/pflag"
)

func main() {
	var (
		url     = pflag.StringP("url", "u", "http://127.0.0.1:8080/debug/doc/swagger.json", "swagger.json地址")
		timeout = pflag.DurationP("timeout", "t", 10*time.Second, "请求超时")
		retry   = pflag.IntP("retry", "r", 3, "失败重试次数")
	)
	pflag.Parse()

	if err := run(*url, *timeout, *retry); err != nil {
		slog.Error("swagcheck failed", slog.String("url", *url), slog.Any("error", err))
		os.Exit(1)
	}
}

func run(url string, timeout time.Duration, retry int) error {
	c, err := client.NewClient(client.Option{
		Client:        client.NewHttpClient(timeout),
		ParseResponse: client.JSONResponse,
		BreakerSetting: &gobreaker.Settings{
			Name: "swagcheck",
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > uint32(retry)
			},
		},
	})
	if err != nil {
		return err
	}

	var data []byte
	for i := 0; ; i++ {
		err = c.Get("%s", url).Do(context.Background(), &data)
		if err == nil || i >= retry {
			break
		}
		slog.Warn("fetch swagger failed, retry", slog.Int("attempt", i+1), slog.Any("error", err))
		time.Sleep(time.Second)
	}
	if err != nil {
		return err
	}
	if err := apidoc.Verify(data); err != nil {
		return err
	}

	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	operations := 0
	for _, item := range doc.Paths {
		operations += len(item)
	}
	fmt.Printf("%s %s: %d paths, %d operations\n", doc.Info.Title, doc.Info.Version, len(doc.Paths), operations)
	return nil
}
