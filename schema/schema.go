// Package schema builds the per-run record and container schemas from a
// caller-supplied list of field names, and validates model output against them.
package schema

import (
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/use-agent/scrapeai/models"
)

const (
	// ListingsKey is the single property of the container.
	ListingsKey = "listings"

	// ContainerName names the structured-output format sent to the model.
	ContainerName = "DynamicListingsContainer"
)

// RecordSchema describes one extracted item: every field is a required string.
type RecordSchema struct {
	fields []string
}

// BuildRecordSchema creates a record schema from field names. Duplicate
// names collapse onto their first occurrence; order is otherwise preserved.
// An empty list, or a blank name, is rejected with INVALID_INPUT.
func BuildRecordSchema(fieldNames []string) (*RecordSchema, error) {
	if len(fieldNames) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "at least one field name is required", nil)
	}

	seen := make(map[string]struct{}, len(fieldNames))
	fields := make([]string, 0, len(fieldNames))
	for _, name := range fieldNames {
		if strings.TrimSpace(name) == "" {
			return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "field names must not be blank", nil)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		fields = append(fields, name)
	}

	return &RecordSchema{fields: fields}, nil
}

// Fields returns the field names in order.
func (r *RecordSchema) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// JSONSchema renders the record as a closed object of required strings.
func (r *RecordSchema) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for _, f := range r.fields {
		props.Set(f, &jsonschema.Schema{Type: "string"})
	}
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             r.Fields(),
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

// ContainerSchema wraps a sequence of records under ListingsKey.
type ContainerSchema struct {
	Record *RecordSchema
}

// BuildContainerSchema wraps record as the required listings array.
func BuildContainerSchema(record *RecordSchema) *ContainerSchema {
	return &ContainerSchema{Record: record}
}

// JSONSchema renders the container for strict structured output.
func (c *ContainerSchema) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set(ListingsKey, &jsonschema.Schema{
		Type:  "array",
		Items: c.Record.JSONSchema(),
	})
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             []string{ListingsKey},
		AdditionalProperties: jsonschema.FalseSchema,
	}
}
