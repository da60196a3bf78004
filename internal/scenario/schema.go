package scenario

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var fileSchema = map[string]interface{}{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title":   "Flight booking scenarios",
	"type":    "object",
	"properties": map[string]interface{}{
		"calendar": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"skip_weekends": map[string]interface{}{"type": "boolean"},
				"blackout": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type":    "string",
						"pattern": "^[0-9]{2}-[0-9]{2}$",
					},
				},
			},
			"additionalProperties": false,
		},
		"scenarios": map[string]interface{}{
			"type":          "object",
			"minProperties": 1,
			"propertyNames": map[string]interface{}{
				"pattern": "^[a-z0-9][a-z0-9_-]*$",
			},
			"additionalProperties": scenarioSchema,
		},
	},
	"required":             []string{"scenarios"},
	"additionalProperties": false,
}

var scenarioSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"kind": map[string]interface{}{
			"type": "string",
			"enum": []string{string(KindOneWay), string(KindRoundTrip), string(KindMissingReturnDate), string(KindInfantLimit)},
		},
		"tags": map[string]interface{}{
			"type":        "array",
			"uniqueItems": true,
			"items": map[string]interface{}{
				"type": "string",
				"enum": []string{"smoke", "regression"},
			},
		},
		"origin":         map[string]interface{}{"type": "string", "minLength": 1},
		"destination":    map[string]interface{}{"type": "string", "minLength": 1},
		"trip_type":      map[string]interface{}{"type": "string", "enum": []string{string(OneWay), string(RoundTrip)}},
		"departure_date": map[string]interface{}{"type": "string", "minLength": 1},
		"return_date":    map[string]interface{}{"type": []string{"string", "null"}},
		"adults":         map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 9},
		"children":       map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 8},
		"infants":        map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 9},
		"expected_error": map[string]interface{}{"type": "string", "minLength": 1},
	},
	"required":             []string{"kind", "origin", "destination", "trip_type", "departure_date"},
	"additionalProperties": false,
}

var (
	compiledOnce sync.Once
	compiled     *gojsonschema.Schema
	compileErr   error
)

func schema() (*gojsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(fileSchema))
	})
	return compiled, compileErr
}

// validateSchema checks a decoded document and returns one line per problem.
func validateSchema(doc interface{}) ([]string, error) {
	s, err := schema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile scenario schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	var problems []string
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return problems, nil
}
