package swag

import "github.com/parkingwang/swag/internal/config"

// SetConfig 加载配置文件 支持viper支持的所有格式
func SetConfig(path string) {
	p, err := config.LoadConfig(path)
	if err != nil {
		panic(err)
	}
	defaultConfig = p
}

var defaultConfig config.Provider

func Conf() config.Provider {
	if defaultConfig == nil {
		panic("default config nil")
	}
	return defaultConfig
}
