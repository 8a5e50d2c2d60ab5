// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"
	"reflect"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var allTypes = []FieldType{
	FieldTypeText, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate, FieldTypeJSON, FieldTypeArray,
}

// genFields generates field sets with unique names "f0".."fn".
func genFields() gopter.Gen {
	types := make([]any, len(allTypes))
	for i, ft := range allTypes {
		types[i] = ft
	}
	return gen.SliceOf(gen.Struct(reflect.TypeOf(InputFieldConfig{}), map[string]gopter.Gen{
		"FieldType": gen.OneConstOf(types...),
		"Required":  gen.Bool(),
	})).Map(func(fields []InputFieldConfig) []InputFieldConfig {
		for i := range fields {
			fields[i].FieldName = fmt.Sprintf("f%d", i)
		}
		return fields
	})
}

func sampleValue(ft FieldType) any {
	switch ft {
	case FieldTypeText:
		return "value"
	case FieldTypeNumber:
		return 42.0
	case FieldTypeBoolean:
		return false
	case FieldTypeDate:
		return "2025-06-01T10:00:00Z"
	case FieldTypeJSON:
		return map[string]any{"k": "v"}
	case FieldTypeArray:
		return []any{1.0, "two"}
	}
	return nil
}

func TestValidateProperties(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("required but absent fields are always reported by name", prop.ForAll(
		func(fields []InputFieldConfig) bool {
			res := Validate(map[string]any{}, fields)
			required := RequiredFieldNames(fields)
			if len(required) == 0 {
				return res.Valid
			}
			if res.Valid {
				return false
			}
			for _, name := range required {
				if !slices.Contains(res.Errors, name+": Required") {
					return false
				}
			}
			return len(res.Errors) == len(required)
		},
		genFields(),
	))

	properties.Property("well typed records are valid", prop.ForAll(
		func(fields []InputFieldConfig, includeOptional bool) bool {
			record := make(map[string]any)
			for _, f := range fields {
				if f.Required || includeOptional {
					record[f.FieldName] = sampleValue(f.FieldType)
				}
			}
			res := Validate(record, fields)
			return res.Valid && len(res.Errors) == 0 && len(res.Data) == len(record)
		},
		genFields(),
		gen.Bool(),
	))

	properties.Property("validation is deterministic", prop.ForAll(
		func(fields []InputFieldConfig) bool {
			record := map[string]any{"f0": 1.0, "f1": "x", "f2": true}
			a := Validate(record, fields)
			b := Validate(record, fields)
			return a.Valid == b.Valid && slices.Equal(a.Errors, b.Errors)
		},
		genFields(),
	))

	properties.TestingRun(t)
}
