package web

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/parkingwang/swag/pkg/apidoc"
	"github.com/parkingwang/swag/pkg/extract"
	"github.com/parkingwang/swag/pkg/mark"
	"github.com/parkingwang/swag/pkg/oas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ping(c *gin.Context) {}

func adminStats(c *gin.Context) {}

func TestEngineTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	pprof.Register(e)
	e.GET("/ping/:id", ping)
	e.GET("/admin/stats", adminStats)

	table := NewEngineTable(e).
		WithGroup("/admin/", "admin").
		WithDoc(ping, "Ping a node.\n\nReturns nothing.")

	routes := table.Routes()
	groups := map[string]string{}
	for _, r := range routes {
		groups[r.Rule] = r.Group
	}
	assert.Equal(t, "admin", groups["/admin/stats"])
	assert.Equal(t, "", groups["/ping/:id"])
	assert.Equal(t, "pprof", groups["/debug/pprof/"])
	assert.Equal(t, "pprof", groups["/debug/pprof/heap"])

	h, ok := table.Handler(mark.IDOf(ping))
	require.True(t, ok)
	assert.Equal(t, "Ping a node.\n\nReturns nothing.", h.Doc)
	_, ok = table.Handler("missing")
	assert.False(t, ok)
}

func TestEngineTableGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	pprof.Register(e)
	e.GET("/ping/:id", ping)

	store := mark.New()
	store.MustMark(ping, mark.Query("verbose", oas.KindBoolean, true))

	g := apidoc.New(
		apidoc.WithInfo(oas.Fields{oas.FieldTitle: "engine", oas.FieldVersion: "1"}),
		apidoc.WithExcludeGroup(apidoc.GroupName, "pprof"),
		apidoc.WithExtractor(extract.New(extract.WithStrategy(extract.Marked{Store: store}))),
	)
	w, err := g.Generate(context.Background(), NewEngineTable(e).WithDoc(ping, "Ping a node."))
	require.NoError(t, err)

	paths := w["paths"].(map[string]any)
	require.Len(t, paths, 1)
	op := paths["/ping/{id}"].(map[string]any)["get"].(map[string]any)
	assert.Equal(t, "Ping a node.", op["summary"])
	assert.Equal(t, []any{
		map[string]any{"name": "id", "in": "path", "required": true, "type": "string"},
		map[string]any{"name": "verbose", "in": "query", "required": false, "type": "boolean"},
	}, op["parameters"])
}

func headerHandler(v string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Handler", v)
	}
}

func TestEngineTableClosures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.GET("/a", headerHandler("/a"))
	e.GET("/b", headerHandler("/b"))
	e.GET("/c", headerHandler("/c"))

	table := NewEngineTable(e)
	routes := table.Routes()
	require.Len(t, routes, 3)
	seen := map[mark.ID]bool{}
	for _, r := range routes {
		assert.False(t, seen[r.Endpoint], r.Endpoint)
		seen[r.Endpoint] = true

		h, ok := table.Handler(r.Endpoint)
		require.True(t, ok)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		h.Func.(gin.HandlerFunc)(c)
		assert.Equal(t, r.Rule, w.Header().Get("X-Handler"))
	}
}
