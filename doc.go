package swag

import "runtime/debug"

type AppInfo struct {
	// app name 同时作为文档的title
	Name string
	// 描述
	Description string
	// 版本号 为空时使用vcs.revision
	Version string
}

func getVCSVersion() string {
	info, ok := debug.ReadBuildInfo()
	if ok {
		for _, v := range info.Settings {
			if v.Key == "vcs.revision" {
				return v.Value
			}
		}
	}
	return ""
}
