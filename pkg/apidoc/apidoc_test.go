package apidoc

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parkingwang/swag/internal/config"
	"github.com/parkingwang/swag/pkg/extract"
	"github.com/parkingwang/swag/pkg/mark"
	"github.com/parkingwang/swag/pkg/oas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type table struct {
	routes   []extract.Route
	handlers map[mark.ID]*extract.Handler
	tags     []oas.Node
}

func (t *table) Routes() []extract.Route { return t.routes }

func (t *table) Handler(id mark.ID) (*extract.Handler, bool) {
	h, ok := t.handlers[id]
	return h, ok
}

type taggedTable struct {
	*table
}

func (t taggedTable) Tags() []oas.Node { return t.tags }

func newTable() *table {
	return &table{
		routes: []extract.Route{
			{Rule: "/users/", Methods: []string{"GET"}, Endpoint: "app.list", Group: "users"},
			{Rule: "/users/<int:id>", Methods: []string{"GET", "DELETE"}, Endpoint: "app.user", Group: "users"},
			{Rule: "/debug/doc/swagger.json", Methods: []string{"GET"}, Endpoint: "swag.json", Group: GroupName},
		},
		handlers: map[mark.ID]*extract.Handler{
			"app.list":  {ID: "app.list", Doc: "Get list of users."},
			"app.user":  {ID: "app.user"},
			"swag.json": {ID: "swag.json"},
		},
		tags: []oas.Node{
			{oas.FieldName: "users", oas.FieldDescription: "user object"},
			{oas.FieldName: GroupName},
		},
	}
}

var testInfo = oas.Fields{oas.FieldTitle: "demo", oas.FieldVersion: "1.0.0"}

func TestGenerate(t *testing.T) {
	g := New(WithInfo(testInfo))
	w, err := g.Generate(context.Background(), newTable())
	require.NoError(t, err)

	assert.Equal(t, "2.0", w["swagger"])
	assert.Equal(t, map[string]any{"title": "demo", "version": "1.0.0"}, w["info"])
	assert.NotContains(t, w, "host")
	assert.NotContains(t, w, "tags")

	paths := w["paths"].(map[string]any)
	assert.Len(t, paths, 2)
	assert.NotContains(t, paths, "/debug/doc/swagger.json")

	op := paths["/users/{id}"].(map[string]any)["get"].(map[string]any)
	assert.Equal(t, []any{
		map[string]any{"name": "id", "in": "path", "required": true, "type": "integer"},
	}, op["parameters"])
	assert.Equal(t, map[string]any{"default": map[string]any{"description": ""}}, op["responses"])
}

func TestGenerateIdempotent(t *testing.T) {
	store := mark.New()
	require.NoError(t, store.Mark("app.list",
		mark.Summary("User index."),
		mark.Query("page", oas.KindInteger, true),
		mark.Tags("users", "admin"),
	))
	g := New(
		WithInfo(testInfo),
		WithExtractor(extract.New(extract.WithStrategy(extract.Marked{Store: store}))),
	)

	var first []byte
	for i := 0; i < 5; i++ {
		w, err := g.Generate(context.Background(), newTable())
		require.NoError(t, err)
		b, err := oas.MarshalJSON(w, true)
		require.NoError(t, err)
		if first == nil {
			first = b
			continue
		}
		assert.Equal(t, string(first), string(b))
	}
}

func TestGenerateOrigin(t *testing.T) {
	r := httptest.NewRequest("GET", "http://api.local:8080/debug/doc/swagger.json", nil)
	r.Header.Set("X-Forwarded-Proto", "HTTPS, http")

	g := New(WithInfo(testInfo), WithBasePath("/v1"))
	w, err := g.Generate(WithRequest(context.Background(), r), newTable())
	require.NoError(t, err)
	assert.Equal(t, "api.local:8080", w["host"])
	assert.Equal(t, []any{"https"}, w["schemes"])
	assert.Equal(t, "/v1", w["basePath"])
}

func TestGenerateMissingInfo(t *testing.T) {
	_, err := New().Generate(context.Background(), newTable())
	assert.ErrorIs(t, err, oas.ErrMissingRequiredField)

	_, err = New(WithInfo(oas.Fields{oas.FieldTitle: "x"})).Generate(context.Background(), newTable())
	assert.ErrorIs(t, err, oas.ErrMissingRequiredField)
}

func TestGenerateHandlerLookup(t *testing.T) {
	tb := newTable()
	delete(tb.handlers, "app.user")
	_, err := New(WithInfo(testInfo)).Generate(context.Background(), tb)
	assert.ErrorIs(t, err, extract.ErrHandlerLookup)
}

func TestGenerateTags(t *testing.T) {
	w, err := New(WithInfo(testInfo)).Generate(context.Background(), taggedTable{newTable()})
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"name": "users", "description": "user object"},
	}, w["tags"])
}

func TestGenerateFilterAndExtra(t *testing.T) {
	g := New(
		WithInfo(testInfo),
		WithExcludeGroup(),
		WithFilter(extract.Filter{ExcludeEndpoints: []string{"list"}}),
		WithExtraFields(oas.Fields{"consumes": []any{"application/json"}}),
	)
	w, err := g.Generate(context.Background(), newTable())
	require.NoError(t, err)
	paths := w["paths"].(map[string]any)
	assert.Contains(t, paths, "/debug/doc/swagger.json")
	assert.NotContains(t, paths, "/users/")
	assert.Equal(t, []any{"application/json"}, w["consumes"])
}

func TestInfoFromConfig(t *testing.T) {
	cfg, err := config.LoadConfigReader(strings.NewReader(`
swag:
  title: User API
  description: 用户服务
  termsOfService: https://example.com/tos
  basePath: /api
`), "yaml")
	require.NoError(t, err)

	g := New(
		WithInfo(oas.Fields{oas.FieldTitle: "app", oas.FieldVersion: "0.1.0"}),
		WithInfoFromConfig(cfg.Child("swag")),
	)
	w, err := g.Generate(context.Background(), newTable())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title":          "User API",
		"version":        "0.1.0",
		"description":    "用户服务",
		"termsOfService": "https://example.com/tos",
	}, w["info"])
	assert.Equal(t, "/api", w["basePath"])

	// nil配置不影响
	g = New(WithInfo(testInfo), WithInfoFromConfig(nil))
	_, err = g.Generate(context.Background(), newTable())
	assert.NoError(t, err)
}

func TestVerify(t *testing.T) {
	store := mark.New(mark.WithDefaultImporters())
	type user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, store.Mark("app.user",
		mark.Response(200, "User.", oas.ImportFrom(oas.ImportStruct, user{}), nil),
	))
	g := New(
		WithInfo(testInfo),
		WithExtractor(extract.New(extract.WithStrategy(extract.Marked{Store: store}))),
	)
	w, err := g.Generate(context.Background(), newTable())
	require.NoError(t, err)
	require.NoError(t, VerifyWire(w))

	err = Verify([]byte(`{"openapi":"3.0.0","info":{"title":"x","version":"1"},"paths":{}}`))
	assert.ErrorIs(t, err, ErrNotSwagger)

	assert.Error(t, Verify([]byte(`not a document`)))
}
