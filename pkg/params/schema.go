// SPDX-License-Identifier: MPL-2.0

package params

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Schema extension keys rendered on every property.
const (
	ExtSection   = "x-section"
	ExtOrder     = "x-order"
	ExtOutput    = "x-output"
	ExtReference = "x-reference"
	ExtType      = "x-type"
)

// OpenAPISchema renders the registry as an OpenAPI 3 object schema with one
// property per parameter. Optional parameters are nullable, mandatory ones
// are listed in "required". Property order and UI grouping are carried in
// the x-order and x-section extensions because JSON objects are unordered.
func (r *Registry) OpenAPISchema() *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	root.Title = "Pipeline parameters"
	root.Required = r.Required()

	section := ""
	for i, s := range r.specs {
		if s.Section != "" {
			section = s.Section
		}
		root.WithProperty(s.Name, propertySchema(s, i, section))
	}
	return root
}

// PropertySchema returns the rendered schema of a single parameter.
func (r *Registry) PropertySchema(name string) (*openapi3.Schema, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return propertySchema(r.specs[i], i, r.SectionOf(name)), true
}

// ValidateValue checks a raw decoded value (as produced by a JSON or YAML
// decoder) against the parameter's rendered schema.
func (r *Registry) ValidateValue(name string, raw any) error {
	schema, ok := r.PropertySchema(name)
	if !ok {
		return &InvalidValueError{Name: name, Input: fmt.Sprint(raw), Reason: "unknown parameter"}
	}
	if err := schema.VisitJSON(normalizeJSON(raw)); err != nil {
		spec, _ := r.Lookup(name)
		return spec.invalid(fmt.Sprint(raw), err.Error())
	}
	return nil
}

func propertySchema(s Spec, order int, section string) *openapi3.Schema {
	var schema *openapi3.Schema
	switch s.Kind {
	case KindInt:
		schema = openapi3.NewIntegerSchema()
	case KindFloat:
		schema = openapi3.NewFloat64Schema()
	case KindBool:
		schema = openapi3.NewBoolSchema()
	default:
		schema = openapi3.NewStringSchema()
	}
	schema.Description = s.Description
	schema.Nullable = !s.Required
	if s.Default.IsSet() {
		schema.Default = s.Default.Interface()
	}
	if s.Required {
		// Mandatory values must not be empty.
		schema.MinLength = 1
	}

	schema.Extensions = map[string]any{
		ExtOrder: order,
		ExtType:  s.Type(),
	}
	if section != "" {
		schema.Extensions[ExtSection] = section
	}
	if s.Kind.IsReference() {
		schema.Extensions[ExtReference] = string(s.Kind)
	}
	if s.Output {
		schema.Extensions[ExtOutput] = true
	}
	return schema
}

// normalizeJSON maps Go integer and Value inputs onto the JSON value space
// VisitJSON understands.
func normalizeJSON(raw any) any {
	switch v := raw.(type) {
	case Value:
		return normalizeJSON(v.Interface())
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return raw
	}
}
