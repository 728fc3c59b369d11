// Package api embeds the OpenAPI document of the HTTP adapter.
package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var document []byte

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, err
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

// swaggerDoc hands the document to swag so echo-swagger serves it as doc.json.
type swaggerDoc struct {
	json string
}

func (d swaggerDoc) ReadDoc() string {
	return d.json
}

var registerOnce sync.Once

// RegisterSwagger registers doc under swag's default instance name. swag
// panics on a second registration, so only the first call has an effect.
func RegisterSwagger(doc *openapi3.T) error {
	var err error
	registerOnce.Do(func() {
		var data []byte
		data, err = json.Marshal(doc)
		if err != nil {
			return
		}
		swag.Register(swag.Name, swaggerDoc{json: string(data)})
	})
	return err
}
