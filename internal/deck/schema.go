package deck

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// exportSchema describes the plain-JSON interchange form produced by
// Export and accepted by Import. Imports are validated against it
// before any asset is constructed, so malformed files fail with a
// schema error instead of a half-built deck.
const exportSchema = `{
	"type": "object",
	"required": ["images"],
	"properties": {
		"images": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["filename"],
				"properties": {
					"filename":   {"type": "string", "minLength": 1},
					"width":      {"type": "integer", "minimum": 0},
					"height":     {"type": "integer", "minimum": 0},
					"byte_size":  {"type": "integer", "minimum": 0},
					"difficulty": {"type": "integer", "minimum": 1, "maximum": 5},
					"tags": {
						"type": "array",
						"items": {"type": "string", "minLength": 1, "maxLength": 24}
					},
					"source": {
						"type": "object",
						"required": ["kind"],
						"properties": {
							"kind": {"enum": ["path", "embedded"]},
							"path": {"type": "string"},
							"data": {"type": "string"}
						}
					}
				}
			}
		}
	}
}`

var (
	compiledSchema     *jsonschema.Schema
	compileSchemaOnce  sync.Once
	compileSchemaError error
)

func importSchema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(exportSchema), &def); err != nil {
			compileSchemaError = fmt.Errorf("parse deck schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://deck-export.json"
		if err := c.AddResource(url, def); err != nil {
			compileSchemaError = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compileSchemaError = c.Compile(url)
	})
	return compiledSchema, compileSchemaError
}

// Export renders the deck as indented plain JSON for interchange.
// Unlike deck files this form is neither compressed nor encrypted.
func (d *Deck) Export() ([]byte, error) {
	return json.MarshalIndent(d.ToRecord(), "", "  ")
}

// Import parses and validates plain-JSON interchange data into a new
// untitled deck.
func Import(data []byte) (*Deck, error) {
	schema, err := importSchema()
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("deck validation failed: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse deck: %w", err)
	}
	return FromRecord("", rec)
}
