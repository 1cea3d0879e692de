package http

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openapiYAML []byte

// APIDoc is the parsed and validated API description.
type APIDoc struct {
	doc  *openapi3.T
	json []byte
}

// LoadAPIDoc parses the embedded OpenAPI document and rejects it if it is
// not a valid 3.0 description.
func LoadAPIDoc(ctx context.Context) (*APIDoc, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal openapi document: %w", err)
	}
	return &APIDoc{doc: doc, json: raw}, nil
}

// ReadDoc satisfies swag.Swagger so the swagger UI can fetch doc.json.
func (d *APIDoc) ReadDoc() string {
	return string(d.json)
}

// Paths lists the documented paths.
func (d *APIDoc) Paths() []string {
	return d.doc.Paths.InMatchingOrder()
}

var registerOnce sync.Once

// RegisterDocs serves the raw document at /openapi.json and the swagger UI
// under /swagger/.
func RegisterDocs(e *echo.Echo, d *APIDoc) {
	registerOnce.Do(func() {
		swag.Register(swag.Name, d)
	})
	e.GET("/openapi.json", func(ctx echo.Context) error {
		return ctx.JSONBlob(http.StatusOK, d.json)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
