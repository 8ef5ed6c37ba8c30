// Package validation checks configured connection properties against the connector schema.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidProperties = errors.New("invalid connection properties")

// PropertiesError lists every problem found in a set of configured properties.
type PropertiesError struct {
	ConnectorID string
	Problems    []string
}

func (e *PropertiesError) Error() string {
	return fmt.Sprintf("connector %s: %s: %s", e.ConnectorID, ErrInvalidProperties, strings.Join(e.Problems, "; "))
}

func (e *PropertiesError) Is(target error) bool {
	return target == ErrInvalidProperties
}

// IsInvalidProperties reports whether err is a properties validation failure.
func IsInvalidProperties(err error) bool {
	return errors.Is(err, ErrInvalidProperties)
}

// Properties validates configured against the schema of provider. Values arrive as form
// strings and are converted to the type each property declares; empty values count as unset.
func Properties(provider models.SchemaProvider, connectorID string, configured map[string]string) error {
	schema := provider.Schema()

	data, problems := typedValues(schema, configured)

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("failed to validate properties: %w", err)
	}

	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}

	if len(problems) == 0 {
		return nil
	}

	sort.Strings(problems)

	return &PropertiesError{ConnectorID: connectorID, Problems: problems}
}

func typedValues(schema *models.JSONSchema, configured map[string]string) (map[string]any, []string) {
	data := make(map[string]any, len(configured))

	var problems []string

	for name, raw := range configured {
		if raw == "" {
			continue
		}

		property := schema.Properties[name]
		if property == nil {
			data[name] = raw

			continue
		}

		value, err := convert(property.Type, raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: must be a valid %s", name, property.Type))

			continue
		}

		data[name] = value
	}

	return data, problems
}

func convert(jsonType, raw string) (any, error) {
	switch jsonType {
	case "boolean":
		return strconv.ParseBool(raw)
	case "integer":
		return strconv.ParseInt(raw, 10, 64)
	case "number":
		return strconv.ParseFloat(raw, 64)
	default:
		return raw, nil
	}
}
