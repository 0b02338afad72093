package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(new(Protocol))
	schema.Title = "Tesseract column stream"
	schema.Description = "Commands accepted on /ws and the frames streamed back"
	return schema
}

func schemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(buildSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
