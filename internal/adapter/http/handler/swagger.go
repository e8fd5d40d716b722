package handler

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed openapi.yaml
var openAPIDoc []byte

const openAPIPath = "/swagger/spec"

// openAPIETag lets clients revalidate the embedded document cheaply.
var openAPIETag = func() string {
	sum := sha256.Sum256(openAPIDoc)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}()

// SwaggerSpec serves the OpenAPI document for the ledger API.
func SwaggerSpec(c *gin.Context) {
	c.Header("ETag", openAPIETag)
	if c.GetHeader("If-None-Match") == openAPIETag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/yaml", openAPIDoc)
}

var swaggerPage = strings.ReplaceAll(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Palma Lending API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '{{SPEC}}', dom_id: '#swagger-ui'});
  </script>
</body>
</html>`, "{{SPEC}}", openAPIPath)

// SwaggerUI renders the interactive docs page.
func SwaggerUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerPage))
}
