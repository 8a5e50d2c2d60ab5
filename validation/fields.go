// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Modes accepted by [ParseInputFields].
const (
	ModeJSON   = "json"
	ModeFields = "fields"
)

// ParseFieldType parses s into a [FieldType].
func ParseFieldType(s string) (FieldType, error) {
	switch ft := FieldType(strings.ToLower(strings.TrimSpace(s))); ft {
	case FieldTypeText, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate, FieldTypeJSON, FieldTypeArray:
		return ft, nil
	default:
		return "", fmt.Errorf("unknown field type %q", s)
	}
}

// ParseInputFields resolves the configured input field set.
//
// In [ModeJSON] raw must be a JSON array of field objects; an empty raw string or a JSON
// value that is not an array yields no fields. In [ModeFields] values is returned as is.
// Any other mode yields no fields.
func ParseInputFields(mode, raw string, values []InputFieldConfig) ([]InputFieldConfig, error) {
	switch mode {
	case ModeJSON:
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		var v jsontext.Value
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid JSON in input fields: %w", err)
		}
		if v.Kind() != '[' {
			return nil, nil
		}
		var fields []InputFieldConfig
		if err := json.Unmarshal(v, &fields); err != nil {
			return nil, fmt.Errorf("invalid JSON in input fields: %w", err)
		}
		return fields, nil
	case ModeFields:
		return values, nil
	default:
		return nil, nil
	}
}

// CheckFields reports configuration mistakes in fields: empty or duplicate names and
// unknown types.
func CheckFields(fields []InputFieldConfig) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f.FieldName) == "" {
			return fmt.Errorf("input field %d: field name is empty", i)
		}
		if seen[f.FieldName] {
			return fmt.Errorf("input field %q declared twice", f.FieldName)
		}
		seen[f.FieldName] = true
		if _, err := ParseFieldType(string(f.FieldType)); err != nil {
			return fmt.Errorf("input field %q: %w", f.FieldName, err)
		}
	}
	return nil
}

// RequiredFieldNames returns the names of the required fields in declaration order.
func RequiredFieldNames(fields []InputFieldConfig) []string {
	var names []string
	for _, f := range fields {
		if f.Required {
			names = append(names, f.FieldName)
		}
	}
	return names
}

// FormatErrors renders validation errors as a numbered list suitable for showing to a model or user.
func FormatErrors(errs []string) string {
	var b strings.Builder
	b.WriteString("Input validation failed. The following fields have errors:")
	for i, e := range errs {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, e)
	}
	return b.String()
}
