package extract

import (
	"context"
	"testing"

	"github.com/parkingwang/swag/pkg/mark"
	"github.com/parkingwang/swag/pkg/oas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageReq struct {
	Token   string `header:"X-Token" binding:"required"`
	Page    int    `form:"page" comment:"第几页"`
	Keyword string `form:"keyword"`
	ID      int    `uri:"id"`
}

type pageResp struct {
	Total int `json:"total"`
}

type createReq struct {
	Name string `json:"name" binding:"required"`
	Age  int    `json:"age"`
}

func listPage(ctx context.Context, in *pageReq) (*pageResp, error) { return nil, nil }

func createItem(ctx context.Context, in *createReq) error { return nil }

func TestBoundParameters(t *testing.T) {
	op := &OperationContext{Method: "GET", Handler: &Handler{Func: listPage}}
	params := Bound{}.Parameters(op, nil)
	require.Len(t, params, 3)
	assert.Equal(t, oas.Node{
		oas.FieldName:     "X-Token",
		oas.FieldIn:       oas.InHeader,
		oas.FieldRequired: true,
		oas.FieldType:     oas.TypeString,
	}, params[0])
	assert.Equal(t, oas.Node{
		oas.FieldName:        "page",
		oas.FieldIn:          oas.InQuery,
		oas.FieldRequired:    false,
		oas.FieldType:        oas.TypeInteger,
		oas.FieldDescription: "第几页",
	}, params[1])

	op.Method = "POST"
	params = Bound{}.Parameters(op, nil)
	assert.Equal(t, oas.InFormData, params[1].(oas.Node)[oas.FieldIn])
}

func TestBoundBody(t *testing.T) {
	op := &OperationContext{Method: "POST", Handler: &Handler{Func: createItem}}
	params := Bound{}.Parameters(op, []any{"existing"})
	require.Len(t, params, 2)
	assert.Equal(t, "existing", params[0])

	body := params[1].(oas.Node)
	assert.Equal(t, "body", body[oas.FieldName])
	assert.Equal(t, oas.InBody, body[oas.FieldIn])
	schema := body[oas.FieldSchema].(oas.Node)
	assert.Equal(t, oas.TypeObject, schema[oas.FieldType])
	assert.Equal(t, []string{"name"}, schema[oas.FieldRequired])

	// 只有error返回值
	assert.Nil(t, Bound{}.Responses(op))
}

func TestBoundResponses(t *testing.T) {
	op := &OperationContext{Method: "GET", Handler: &Handler{Func: listPage}}
	resp := Bound{}.Responses(op)
	require.Contains(t, resp, "200")
	ok := resp["200"].(oas.Node)
	assert.Equal(t, "Successful operation", ok[oas.FieldDescription])
	assert.Equal(t, oas.TypeObject, ok[oas.FieldSchema].(oas.Node)[oas.FieldType])

	// 非rpc风格
	op.Handler.Func = func() {}
	assert.Nil(t, Bound{}.Responses(op))
	assert.Empty(t, Bound{}.Parameters(op, nil))
}

func TestChain(t *testing.T) {
	store := mark.New()
	require.NoError(t, store.Mark("list",
		mark.Summary("List."),
		mark.Query("extra", oas.KindString, true),
		mark.ResponseObject(200, oas.Node{oas.FieldDescription: "Page of items."}),
		mark.ResponseObject(404, oas.Node{oas.FieldDescription: "Not found."}),
	))

	s := Chain(Bound{}, Marked{Store: store})
	op := &OperationContext{Method: "GET", Endpoint: "list", Handler: &Handler{Func: listPage}}

	params := s.Parameters(op, nil)
	require.Len(t, params, 4)
	assert.Equal(t, "extra", params[3].(map[string]any)[oas.FieldName])

	resp := s.Responses(op)
	assert.Equal(t, "Page of items.", resp["200"].(map[string]any)[oas.FieldDescription])
	assert.Contains(t, resp["200"], oas.FieldSchema)
	assert.Contains(t, resp, "404")

	assert.Equal(t, oas.Node{oas.FieldSummary: "List."}, s.Others(op))
	assert.Nil(t, Chain(Default{}).Others(op))
}

func TestMarkedWithoutStore(t *testing.T) {
	op := &OperationContext{Endpoint: "x"}
	s := Marked{}
	assert.Equal(t, []any{1}, s.Parameters(op, []any{1}))
	assert.Nil(t, s.Responses(op))
	assert.Nil(t, s.Others(op))
}
