// Package api embeds the OpenAPI description of the marketplace HTTP interface. The
// HTTP adapter validates /api/v1 requests against it and serves it to the Swagger UI.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPI []byte
