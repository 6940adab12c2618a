package scene

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// sceneSchema accepts a FeatureCollection of Point obstacles carrying a
// positive radius and of Polygon or MultiPolygon obstacles
const sceneSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type", "features"],
  "properties": {
    "type": {"const": "FeatureCollection"},
    "features": {"type": "array", "items": {"$ref": "#/definitions/feature"}}
  },
  "definitions": {
    "feature": {
      "type": "object",
      "required": ["type", "geometry"],
      "properties": {
        "type": {"const": "Feature"},
        "geometry": {
          "type": "object",
          "required": ["type", "coordinates"],
          "properties": {
            "type": {"enum": ["Point", "Polygon", "MultiPolygon"]}
          }
        }
      },
      "if": {
        "properties": {"geometry": {"properties": {"type": {"const": "Point"}}}}
      },
      "then": {
        "required": ["properties"],
        "properties": {
          "properties": {
            "type": "object",
            "required": ["radius"],
            "properties": {"radius": {"type": "number", "exclusiveMinimum": 0}}
          }
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(sceneSchema))
	})
	return compiledSchema, schemaErr
}

// Validate checks raw scene GeoJSON against the scene schema
func Validate(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("scene schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidScene, strings.Join(problems, "; "))
	}
	return nil
}
