// Package api holds the OpenAPI document describing the HTTP interface.
package api

import _ "embed"

// OpenAPISpec is the raw YAML OpenAPI document.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
