package web

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/parkingwang/swag/pkg/apidoc"
	"github.com/parkingwang/swag/pkg/http/code"
	"github.com/parkingwang/swag/pkg/oas"
)

var swaggerUI = template.Must(template.New("swagger-ui").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({ url: {{.URL}}, dom_id: '#swagger-ui' });
  };
</script>
</body>
</html>
`))

// registerDoc 文档路由 属于swag分组 不会出现在文档中
func (s *Server) registerDoc() {
	prefix := "/" + strings.Trim(s.opt.doc.prefix, "/")
	jsonPath := joinPaths(prefix, "swagger.json")
	yamlPath := joinPaths(prefix, "swagger.yaml")

	handlers := []struct {
		path string
		h    gin.HandlerFunc
	}{
		{prefix, s.swaggerUI(jsonPath)},
		{jsonPath, s.swaggerJSON},
		{yamlPath, s.swaggerYAML},
	}
	for _, v := range handlers {
		s.e.GET(v.path, v.h)
		s.opt.routes.Add(http.MethodGet, v.path, apidoc.GroupName, v.h)
	}
}

func (s *Server) generate(c *gin.Context) (oas.Wire, bool) {
	w, err := s.doc.Generate(c, s.opt.routes)
	if err != nil {
		renderResult(s.opt, c, nil, code.NewInternalError(err))
		return nil, false
	}
	return w, true
}

func (s *Server) swaggerUI(url string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		err := swaggerUI.Execute(c.Writer, map[string]string{
			"Title": "Swagger UI",
			"URL":   url,
		})
		if err != nil {
			slog.ErrorContext(c, "render swagger ui failed", slog.Any("error", err))
		}
	}
}

func (s *Server) swaggerJSON(c *gin.Context) {
	if w, ok := s.generate(c); ok {
		renderDoc(s.opt, c, w, docJSON)
	}
}

func (s *Server) swaggerYAML(c *gin.Context) {
	if w, ok := s.generate(c); ok {
		renderDoc(s.opt, c, w, docYAML)
	}
}
