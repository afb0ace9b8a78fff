package extract

import (
	"bytes"
	"context"
	"log/slog"
	"reflect"
	"testing"

	"github.com/parkingwang/swag/pkg/mark"
	"github.com/parkingwang/swag/pkg/oas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	routes   []Route
	handlers map[mark.ID]*Handler
}

func (t *fakeTable) Routes() []Route { return t.routes }

func (t *fakeTable) Handler(id mark.ID) (*Handler, bool) {
	h, ok := t.handlers[id]
	return h, ok
}

func (t *fakeTable) add(rule string, methods []string, h *Handler, group string) {
	if t.handlers == nil {
		t.handlers = map[mark.ID]*Handler{}
	}
	t.routes = append(t.routes, Route{Rule: rule, Methods: methods, Endpoint: h.ID, Group: group})
	t.handlers[h.ID] = h
}

type userIDReq struct {
	UserID int `uri:"user_id"`
}

func userTable() *fakeTable {
	t := &fakeTable{}
	t.add("/users/", []string{"GET", "HEAD", "OPTIONS"}, &Handler{ID: "app.list_users", Doc: "Get list of users."}, "")
	t.add("/users/<int:user_id>", []string{"GET", "DELETE"}, &Handler{
		ID:     "app.user",
		Params: map[string]reflect.Type{"user_id": reflect.TypeOf(0)},
	}, "")
	t.add("/static/<path:filename>", []string{"GET"}, &Handler{ID: "static"}, "")
	return t
}

func userIDParam() oas.Node {
	return oas.Node{
		oas.FieldName:     "user_id",
		oas.FieldIn:       oas.InPath,
		oas.FieldType:     oas.TypeInteger,
		oas.FieldRequired: true,
	}
}

func TestExtractPaths(t *testing.T) {
	e := New()
	paths, err := e.ExtractPaths(userTable(), Filter{ExcludeEndpoints: []string{"static"}})
	require.NoError(t, err)
	require.Len(t, paths, 2)

	list := paths["/users/"]
	require.Len(t, list, 1)
	get := list["get"].(oas.Node)
	assert.Equal(t, "Get list of users.", get[oas.FieldSummary])
	assert.Equal(t, "Get list of users.", get[oas.FieldDescription])
	assert.Empty(t, get[oas.FieldParameters])

	user := paths["/users/{user_id}"]
	require.Len(t, user, 2)
	for _, method := range []string{"get", "delete"} {
		op := user[method].(oas.Node)
		assert.Equal(t, []any{userIDParam()}, op[oas.FieldParameters], method)
		assert.Equal(t, map[string]any{
			oas.ResponseDefault: oas.Node{oas.FieldDescription: ""},
		}, op[oas.FieldResponses], method)
		assert.NotContains(t, op, oas.FieldSummary)
	}
}

func TestExtractPathsMarked(t *testing.T) {
	store := mark.New()
	require.NoError(t, store.Mark("app.list_users",
		mark.Summary("User index."),
		mark.Query("page", oas.KindInteger, true),
		mark.ResponseObject(200, oas.Node{oas.FieldDescription: "List of users."}),
	))

	e := New(WithStrategy(Marked{Store: store}))
	paths, err := e.ExtractPaths(userTable(), Filter{ExcludeEndpoints: []string{"static"}})
	require.NoError(t, err)

	get := paths["/users/"]["get"].(oas.Node)
	assert.Equal(t, "User index.", get[oas.FieldSummary])
	assert.Equal(t, "Get list of users.", get[oas.FieldDescription])
	assert.Equal(t, []any{
		map[string]any{
			oas.FieldName:     "page",
			oas.FieldIn:       oas.InQuery,
			oas.FieldType:     oas.TypeInteger,
			oas.FieldRequired: false,
		},
	}, get[oas.FieldParameters])
	assert.Equal(t, map[string]any{
		"200": map[string]any{oas.FieldDescription: "List of users."},
	}, get[oas.FieldResponses])

	// 没有标记的handler仍然使用default响应
	del := paths["/users/{user_id}"]["delete"].(oas.Node)
	assert.Contains(t, del[oas.FieldResponses], oas.ResponseDefault)
}

func TestExtractPathsFilter(t *testing.T) {
	table := userTable()
	table.add("/admin/stats", []string{"GET"}, &Handler{ID: "admin.stats"}, "admin")

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name: "no filter",
			want: []string{"/admin/stats", "/static/{filename}", "/users/", "/users/{user_id}"},
		},
		{
			name:   "include group",
			filter: Filter{Groups: []string{"admin"}},
			want:   []string{"/admin/stats"},
		},
		{
			name:   "include ungrouped",
			filter: Filter{Groups: []string{""}, ExcludeEndpoints: []string{"static"}},
			want:   []string{"/users/", "/users/{user_id}"},
		},
		{
			name:   "exclude group",
			filter: Filter{ExcludeGroups: []string{"admin"}},
			want:   []string{"/static/{filename}", "/users/", "/users/{user_id}"},
		},
		{
			name:   "short endpoint name",
			filter: Filter{Endpoints: []string{"list_users"}},
			want:   []string{"/users/"},
		},
		{
			name:   "exclude wins",
			filter: Filter{Groups: []string{"admin"}, ExcludeGroups: []string{"admin"}},
			want:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths, err := New().ExtractPaths(table, tt.filter)
			require.NoError(t, err)
			got := make([]string, 0, len(paths))
			for p := range paths {
				got = append(got, p)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestExtractPathsHandlerLookup(t *testing.T) {
	table := userTable()
	table.routes = append(table.routes, Route{Rule: "/gone", Methods: []string{"GET"}, Endpoint: "app.gone"})

	paths, err := New().ExtractPaths(table, Filter{})
	assert.Nil(t, paths)
	var le *HandlerLookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, mark.ID("app.gone"), le.Endpoint)
	assert.ErrorIs(t, err, ErrHandlerLookup)
}

func TestExtractPathsSkipsInvalidRule(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	table := userTable()
	table.add("/broken/<int:id", []string{"GET"}, &Handler{ID: "app.broken"}, "")

	paths, err := New(WithLogger(logger)).ExtractPaths(table, Filter{})
	require.NoError(t, err)
	assert.Len(t, paths, 3)
	assert.Contains(t, buf.String(), "skip route")
}

func getUser(ctx context.Context, in *userIDReq) (*struct{}, error) { return nil, nil }

func TestPathParameterTypes(t *testing.T) {
	type req struct {
		ID   int64  `uri:"id"`
		Name string `uri:"name"`
	}
	handler := func(ctx context.Context, in *req) error { return nil }

	table := &fakeTable{}
	table.add("/a/:id", []string{"GET"}, &Handler{ID: "a", Func: handler}, "")
	table.add("/b/<float:id>", []string{"GET"}, &Handler{ID: "b", Func: handler}, "")
	table.add("/c/<custom:id>", []string{"GET"}, &Handler{ID: "c", Func: handler}, "")
	table.add("/d/:x", []string{"GET"}, &Handler{ID: "d"}, "")
	table.add("/e/<any('x', 'y'):kind>", []string{"GET"}, &Handler{ID: "e"}, "")
	table.add("/f/:user_id", []string{"GET"}, &Handler{ID: "f", Func: getUser}, "")

	paths, err := New().ExtractPaths(table, Filter{})
	require.NoError(t, err)

	param := func(path string) oas.Node {
		op := paths[path]["get"].(oas.Node)
		params := op[oas.FieldParameters].([]any)
		require.Len(t, params, 1, path)
		return params[0].(oas.Node)
	}
	assert.Equal(t, oas.TypeInteger, param("/a/{id}")[oas.FieldType])
	assert.Equal(t, oas.TypeNumber, param("/b/{id}")[oas.FieldType])
	// 未知转换器使用handler参数类型
	assert.Equal(t, oas.TypeInteger, param("/c/{id}")[oas.FieldType])
	assert.Equal(t, oas.TypeString, param("/d/{x}")[oas.FieldType])
	assert.Equal(t, []any{"x", "y"}, param("/e/{kind}")["enum"])
	assert.Equal(t, oas.TypeInteger, param("/f/{user_id}")[oas.FieldType])
	for _, p := range []string{"/a/{id}", "/d/{x}"} {
		assert.Equal(t, true, param(p)[oas.FieldRequired])
	}
}

func TestDuplicateParameterKept(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	store := mark.New()
	require.NoError(t, store.Mark("app.user", mark.Path("user_id", oas.KindString)))

	e := New(WithStrategy(Marked{Store: store}), WithLogger(logger))
	paths, err := e.ExtractPaths(userTable(), Filter{})
	require.NoError(t, err)

	op := paths["/users/{user_id}"]["get"].(oas.Node)
	params := op[oas.FieldParameters].([]any)
	require.Len(t, params, 2)
	for _, p := range params {
		assert.Equal(t, "user_id", p.(map[string]any)[oas.FieldName])
	}
	assert.Contains(t, buf.String(), "duplicate parameter")
}

func TestSamePathDifferentRules(t *testing.T) {
	table := &fakeTable{}
	table.add("/users/<int:id>", []string{"GET"}, &Handler{ID: "get"}, "")
	table.add("/users/:id", []string{"DELETE"}, &Handler{ID: "del"}, "")

	paths, err := New().ExtractPaths(table, Filter{})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Contains(t, paths["/users/{id}"], "get")
	assert.Contains(t, paths["/users/{id}"], "delete")
}

func TestGroupTags(t *testing.T) {
	store := mark.New()
	require.NoError(t, store.Mark("admin.tagged", mark.Tags("custom")))

	table := &fakeTable{}
	table.add("/admin/stats", []string{"GET"}, &Handler{ID: "admin.stats"}, "admin")
	table.add("/admin/tagged", []string{"GET"}, &Handler{ID: "admin.tagged"}, "admin")
	table.add("/root", []string{"GET"}, &Handler{ID: "root"}, "")

	paths, err := New(WithGroupTags(), WithStrategy(Marked{Store: store})).ExtractPaths(table, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []any{"admin"}, paths["/admin/stats"]["get"].(oas.Node)[oas.FieldTags])
	assert.Equal(t, []any{"custom"}, paths["/admin/tagged"]["get"].(oas.Node)[oas.FieldTags])
	assert.NotContains(t, paths["/root"]["get"].(oas.Node), oas.FieldTags)
}

func TestStrictOperation(t *testing.T) {
	store := mark.New()
	require.NoError(t, store.Mark("root", mark.Swag(oas.Node{"x-extra": 1})))

	table := &fakeTable{}
	table.add("/root", []string{"GET"}, &Handler{ID: "root"}, "")

	_, err := New(WithStrategy(Marked{Store: store})).ExtractPaths(table, Filter{})
	require.NoError(t, err)

	_, err = New(WithStrategy(Marked{Store: store}), WithStrict()).ExtractPaths(table, Filter{})
	assert.ErrorIs(t, err, oas.ErrUnknownField)
}
