package oas

// Swagger 2.0 节点定义
//
// https://swagger.io/specification/v2/

// 常用字段的内部名称
const (
	FieldName         = "name"
	FieldIn           = "in_"
	FieldType         = "type"
	FieldFormat       = "format"
	FieldRequired     = "required"
	FieldDescription  = "description"
	FieldSummary      = "summary"
	FieldTitle        = "title"
	FieldSchema       = "schema"
	FieldItems        = "items"
	FieldProperties   = "properties"
	FieldHeaders      = "headers"
	FieldParameters   = "parameters"
	FieldResponses    = "responses"
	FieldTags         = "tags"
	FieldOperationID  = "operation_id"
	FieldVersion      = "version"
	FieldInfo         = "info"
	FieldHost         = "host"
	FieldBasePath     = "base_path"
	FieldSchemes      = "schemes"
	FieldPaths        = "paths"
	FieldDefinitions  = "definitions"
	FieldExternalDocs = "external_docs"
)

// 参数位置
const (
	InPath     = "path"
	InQuery    = "query"
	InHeader   = "header"
	InFormData = "formData"
	InBody     = "body"
)

// SwaggerVersion 生成文档的swagger版本
const SwaggerVersion = "2.0"

// ResponseDefault 未声明状态码时使用的响应key
const ResponseDefault = "default"

func numericConstraints() []*Field {
	return []*Field{
		raw("multiple_of"),
		raw("maximum"),
		raw("exclusive_maximum"),
		raw("minimum"),
		raw("exclusive_minimum"),
		raw("max_length"),
		raw("min_length"),
		raw("max_items"),
		raw("min_items"),
		raw("unique_items"),
	}
}

func join(groups ...[]*Field) []*Field {
	var out []*Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var (
	ExternalDocs = newNodeType("ExternalDocs",
		raw("description"),
		required("url"),
	)

	Items = newNodeType("Items", join(
		[]*Field{
			required(FieldType),
			raw(FieldFormat),
			self(nested(FieldItems, nil)),
			raw("collection_format"),
			raw("default"),
			raw("enum"),
		},
		numericConstraints(),
		[]*Field{
			raw("max_properties"),
			raw("min_properties"),
		},
	)...)

	Schema = newNodeType("Schema", join(
		[]*Field{
			renamed(raw("ref"), "$ref"),
			required(FieldType),
			raw(FieldFormat),
			raw(FieldTitle),
			raw(FieldDescription),
			raw("default"),
			raw(FieldRequired),
			self(nested(FieldItems, nil)),
			self(nestedList("all_of", nil)),
			raw(FieldProperties),
			raw("additional_properties"),
			raw("pattern"),
			raw("enum"),
		},
		numericConstraints(),
		[]*Field{
			raw("max_properties"),
			raw("min_properties"),
			raw("discriminator"),
			raw("read_only"),
			raw("xml"),
			nested(FieldExternalDocs, ExternalDocs),
			raw("example"),
		},
	)...)

	License = newNodeType("License",
		required(FieldName),
		raw("url"),
	)

	Contact = newNodeType("Contact",
		raw(FieldName),
		raw("url"),
		raw("email"),
	)

	Info = newNodeType("Info",
		required(FieldTitle),
		raw(FieldDescription),
		raw("terms_of_service"),
		nested("contact", Contact),
		nested("license", License),
		required(FieldVersion),
	)

	Header = newNodeType("Header", join(
		[]*Field{
			raw(FieldDescription),
			required(FieldType),
			raw(FieldFormat),
			nested(FieldItems, Items),
			raw("collection_format"),
			raw("pattern"),
			raw("enum"),
		},
		numericConstraints(),
		[]*Field{
			raw("examples"),
		},
	)...)

	Parameter = newNodeType("Parameter", join(
		[]*Field{
			required(FieldName),
			raw(FieldIn),
			raw(FieldDescription),
			raw(FieldRequired),
			// in=body
			nested(FieldSchema, Schema),
			// in!=body
			raw(FieldType),
			raw(FieldFormat),
			raw("allow_empty_value"),
			nested(FieldItems, Items),
			raw("collection_format"),
			raw("default"),
			raw("pattern"),
			raw("enum"),
		},
		numericConstraints(),
	)...)

	Response = newNodeType("Response",
		required(FieldDescription),
		nested(FieldSchema, Schema),
		nestedMap(FieldHeaders, Header),
		raw("examples"),
	)

	Operation = newNodeType("Operation",
		raw(FieldTags),
		raw(FieldSummary),
		raw(FieldDescription),
		nested(FieldExternalDocs, ExternalDocs),
		raw(FieldOperationID),
		raw("consumes"),
		raw("produces"),
		nestedList(FieldParameters, Parameter),
		nestedMap(FieldResponses, Response),
		raw(FieldSchemes),
		raw("deprecated"),
	)

	PathItem = newNodeType("PathItem",
		nested("get", Operation),
		nested("put", Operation),
		nested("post", Operation),
		nested("delete", Operation),
		nested("options", Operation),
		nested("head", Operation),
		nested("patch", Operation),
		nestedList(FieldParameters, Parameter),
	)

	Tag = newNodeType("Tag",
		required(FieldName),
		raw(FieldDescription),
		nested(FieldExternalDocs, ExternalDocs),
	)

	// Document swagger根节点
	Document = newNodeType("Document",
		withDefault(renamed(required(FieldVersion), "swagger"), SwaggerVersion),
		mandatory(nested(FieldInfo, Info)),
		raw(FieldHost),
		raw(FieldBasePath),
		raw(FieldSchemes),
		raw("consumes"),
		raw("produces"),
		nestedMap(FieldPaths, PathItem),
		nestedMap(FieldDefinitions, Schema),
		nestedMap(FieldParameters, Parameter),
		nestedMap(FieldResponses, Response),
		nestedList(FieldTags, Tag),
		nested(FieldExternalDocs, ExternalDocs),
	)
)
