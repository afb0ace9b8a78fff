package config

import (
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Provider interface {
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
	GetTime(key string) time.Time
	GetBool(key string) bool
	GetStringMap(key string) map[string]any
	GetStringMapString(key string) map[string]string
	GetStringMapStringSlice(key string) map[string][]string
	GetStringSlice(key string) []string
	GetIntSlice(key string) []int
	Get(key string) any
	Set(key string, value any)
	SetDefault(key string, value any)
	IsSet(key string) bool

	Child(key string) Provider
	Decode(key string, value any) error
}

// LoadConfig 读取配置文件
// 环境变量可以覆盖配置 SWAG_SERVER_WEB_ADDR -> server.web.addr
func LoadConfig(path string) (Provider, error) {
	p := newViper()
	p.SetConfigFile(path)
	if err := p.ReadInConfig(); err != nil {
		return nil, err
	}
	return &defaultProvider{Viper: p}, nil
}

// LoadConfigReader 从reader读取配置 typ为 yaml json toml 等
func LoadConfigReader(r io.Reader, typ string) (Provider, error) {
	p := newViper()
	p.SetConfigType(typ)
	if err := p.ReadConfig(r); err != nil {
		return nil, err
	}
	return &defaultProvider{Viper: p}, nil
}

// FromViper 使用已有的viper实例
func FromViper(v *viper.Viper) Provider {
	return &defaultProvider{Viper: v}
}

func newViper() *viper.Viper {
	p := viper.New()
	p.SetEnvPrefix("swag")
	p.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	p.AutomaticEnv()
	return p
}

type defaultProvider struct {
	*viper.Viper
}

func (p *defaultProvider) Child(key string) Provider {
	if p.Viper != nil {
		sub := p.Viper.Sub(key)
		if sub == nil {
			return nil
		}
		return &defaultProvider{Viper: sub}
	}
	return nil
}

func (p *defaultProvider) Decode(key string, value any) error {
	if p.Viper != nil {
		return p.Viper.UnmarshalKey(key, value)
	}
	return nil
}
