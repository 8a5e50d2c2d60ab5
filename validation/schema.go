// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// fieldSchemas maps each field type to the JSON Schema its values must satisfy.
var fieldSchemas = map[FieldType]map[string]any{
	FieldTypeText:    {"type": "string"},
	FieldTypeNumber:  {"type": "number"},
	FieldTypeBoolean: {"type": "boolean"},
	FieldTypeDate:    {"type": "string", "format": "date-time"},
	FieldTypeJSON:    {"type": "object"},
	FieldTypeArray:   {"type": "array"},
}

// expectedName is the type name used in "Expected X, received Y" messages.
var expectedName = map[FieldType]string{
	FieldTypeText:    "string",
	FieldTypeNumber:  "number",
	FieldTypeBoolean: "boolean",
	FieldTypeDate:    "date",
	FieldTypeJSON:    "object",
	FieldTypeArray:   "array",
}

var compiledSchemas = sync.OnceValues(func() (map[FieldType]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	out := make(map[FieldType]*jsonschema.Schema, len(fieldSchemas))
	for ft, doc := range fieldSchemas {
		url := fmt.Sprintf("urn:a2a-agent:field:%s.json", ft)
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema for %s: %w", ft, err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", ft, err)
		}
		out[ft] = sch
	}
	return out, nil
})

// checkType validates value against the schema for ft. Unknown field types accept anything.
// The returned reason is only meaningful when ok is false.
func checkType(ft FieldType, value any) (reason string, ok bool) {
	schemas, err := compiledSchemas()
	if err != nil {
		return err.Error(), false
	}
	sch, known := schemas[ft]
	if !known {
		return "", true
	}
	got := typeName(value)
	if _, isJSON := value.(map[string]any); isJSON || jsonScalar(value) {
		if err := sch.Validate(value); err == nil {
			return "", true
		}
	}
	if ft == FieldTypeDate && got == "string" {
		return "Invalid datetime", false
	}
	return fmt.Sprintf("Expected %s, received %s", expectedName[ft], got), false
}

// normalize converts Go values that are not raw JSON values into their JSON equivalent
// so the schema validator can inspect them.
func normalize(v any) any {
	switch v := v.(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out
	}
	return v
}

// jsonScalar reports whether v is a value the schema validator understands other than an object.
func jsonScalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, []any:
		return true
	}
	return false
}

// typeName describes the JSON type of v.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return reflect.TypeOf(v).String()
	}
}
