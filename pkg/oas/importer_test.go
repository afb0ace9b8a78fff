package oas

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string `json:"city"`
}

type base struct {
	ID int64 `json:"id" binding:"required"`
}

type userForm struct {
	base
	Name    string            `json:"name" comment:"用户名" binding:"required,max=10"`
	Age     int32             `json:"age"`
	Tags    []string          `json:"tags"`
	Address *address          `json:"address"`
	Extra   map[string]string `json:"extra"`
	Ignored string            `json:"-"`
	NoTag   string
}

func TestStructImporter(t *testing.T) {
	got, err := StructImporter{}.Import(userForm{})
	require.NoError(t, err)

	assert.Equal(t, TypeObject, got[FieldType])
	assert.ElementsMatch(t, []string{"id", "name"}, got[FieldRequired])

	props, ok := got[FieldProperties].(map[string]Node)
	require.True(t, ok)
	assert.Len(t, props, 6)
	assert.Equal(t, Node{"type": "integer", "format": "int64"}, props["id"])
	assert.Equal(t, Node{"type": "string", "description": "用户名"}, props["name"])
	assert.Equal(t, Node{"type": "integer", "format": "int32"}, props["age"])
	assert.Equal(t, Node{"type": "array", "items": Wire{"type": "string"}}, props["tags"])
	assert.Equal(t, Node{
		"type":       "object",
		"properties": map[string]Node{"city": {"type": "string"}},
	}, props["address"])
	assert.Equal(t, Node{"type": "object", "additionalProperties": true}, props["extra"])
}

func TestStructImporterInputs(t *testing.T) {
	for name, v := range map[string]any{
		"pointer": &userForm{},
		"type":    reflect.TypeOf(userForm{}),
		"value":   reflect.ValueOf(userForm{}),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := StructImporter{Tag: "json"}.Import(v)
			require.NoError(t, err)
			assert.Equal(t, TypeObject, got[FieldType])
		})
	}

	_, err := StructImporter{}.Import(nil)
	assert.Error(t, err)
}

func TestJSONSchemaImporter(t *testing.T) {
	type item struct {
		Name  string   `json:"name"`
		Count int      `json:"count,omitempty"`
		Tags  []string `json:"tags,omitempty"`
	}
	got, err := JSONSchemaImporter{}.Import(&item{})
	require.NoError(t, err)

	assert.Equal(t, TypeObject, got[FieldType])
	assert.NotContains(t, got, "$schema")
	props, ok := AsMap(got[FieldProperties])
	require.True(t, ok)
	assert.Equal(t, map[string]any{"type": "string"}, props["name"])
	assert.Equal(t, map[string]any{"type": "integer"}, props["count"])
	required, _ := AsList(got[FieldRequired])
	assert.Equal(t, []any{"name"}, required)
}

func TestSchemaSourceResolve(t *testing.T) {
	importers := map[string]Importer{
		"fixed": ImporterFunc(func(v any) (Node, error) {
			return Node{FieldType: TypeString, FieldDescription: v}, nil
		}),
	}

	raw := RawSchema(Node{FieldType: TypeInteger})
	assert.True(t, raw.IsRaw())
	assert.False(t, raw.IsZero())
	n, err := raw.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, Node{FieldType: TypeInteger}, n)

	n, err = ImportFrom("fixed", "x").Resolve(importers)
	require.NoError(t, err)
	assert.Equal(t, Node{FieldType: TypeString, FieldDescription: "x"}, n)

	_, err = ImportFrom("pydantic", "x").Resolve(importers)
	assert.ErrorIs(t, err, ErrImporterUnavailable)

	_, err = SchemaSource{value: "not a map"}.Resolve(nil)
	assert.Error(t, err)

	assert.True(t, SchemaSource{}.IsZero())
	assert.Equal(t, "fixed", ImportFrom("fixed", nil).System())
}

func TestCheckSchema(t *testing.T) {
	assert.NoError(t, CheckSchema(Node{
		FieldType:       TypeObject,
		FieldProperties: map[string]any{"a": map[string]any{"type": "string"}},
	}))
	assert.Error(t, CheckSchema(Node{FieldType: 5}))
}
