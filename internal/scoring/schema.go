package scoring

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// responseSchema describes the body the backend must return on success.
const responseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["labels"],
  "properties": {
    "labels": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

var (
	compiledSchema     *gojsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func loadResponseSchema() (*gojsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiledSchema, compiledSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	})
	return compiledSchema, compiledSchemaErr
}

// validateResponse checks a raw response body against the response schema.
func validateResponse(body []byte) error {
	schema, err := loadResponseSchema()
	if err != nil {
		return fmt.Errorf("failed to compile response schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &SchemaError{Message: "response is not valid JSON", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return &SchemaError{Message: strings.Join(problems, "; ")}
}
