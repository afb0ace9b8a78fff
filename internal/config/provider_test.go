package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
app:
  log:
    debug: true
server:
  web:
    addr: ":9090"
    openapi: true
    timeout: 3s
swag:
  title: demo
`

func TestLoadConfigReader(t *testing.T) {
	p, err := LoadConfigReader(strings.NewReader(testConfig), "yaml")
	require.NoError(t, err)

	assert.True(t, p.GetBool("app.log.debug"))
	web := p.Child("server.web")
	require.NotNil(t, web)
	assert.Equal(t, ":9090", web.GetString("addr"))
	assert.True(t, web.GetBool("openapi"))
	assert.Equal(t, 3*time.Second, web.GetDuration("timeout"))
	assert.Nil(t, p.Child("missing"))

	var swag struct {
		Title string `mapstructure:"title"`
	}
	require.NoError(t, p.Decode("swag", &swag))
	assert.Equal(t, "demo", swag.Title)
}

func TestLoadConfigEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	t.Setenv("SWAG_SERVER_WEB_ADDR", ":7070")

	p, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", p.GetString("server.web.addr"))

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	v.Set("a.b", 1)
	p := FromViper(v)
	assert.Equal(t, 1, p.Child("a").GetInt("b"))
}
