// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package validation checks workflow input records against the declared input fields
// before they are allowed to trigger a workflow.
package validation

import (
	"fmt"
)

// FieldType is the declared type of an input field.
type FieldType string

// FieldType constants.
const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeJSON    FieldType = "json"
	FieldTypeArray   FieldType = "array"
)

// InputFieldConfig declares one field the workflow expects in its request context.
type InputFieldConfig struct {
	FieldName string    `json:"fieldName" mapstructure:"field_name" yaml:"field_name"`
	FieldType FieldType `json:"fieldType" mapstructure:"field_type" yaml:"field_type"`
	Required  bool      `json:"required,omitzero" mapstructure:"required" yaml:"required"`
}

// Result is the outcome of [Validate].
type Result struct {
	// Valid reports whether the record satisfied every field.
	Valid bool
	// Data holds the declared fields that were supplied. Only set when Valid.
	Data map[string]any
	// Errors lists every failure as "<fieldName>: <reason>", in field declaration order.
	Errors []string
}

// recordName is used in error messages that concern the record itself rather than a field.
const recordName = "requestContext"

// Validate checks record against fields.
//
// An empty field set accepts any record. Failures are collected for all fields, never
// short-circuited. Validate has no side effects and is safe for concurrent use.
func Validate(record any, fields []InputFieldConfig) Result {
	if len(fields) == 0 {
		data, _ := record.(map[string]any)
		return Result{Valid: true, Data: data}
	}

	obj, ok := record.(map[string]any)
	if !ok {
		return invalidRecord(record, fields)
	}

	var errs []string
	data := make(map[string]any, len(fields))
	for _, field := range fields {
		value, present := obj[field.FieldName]
		if !present || value == nil {
			if field.Required {
				errs = append(errs, fieldError(field.FieldName, "Required"))
			}
			continue
		}
		value = normalize(value)
		if reason, ok := checkType(field.FieldType, value); !ok {
			errs = append(errs, fieldError(field.FieldName, reason))
			continue
		}
		data[field.FieldName] = value
	}

	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{Valid: true, Data: data}
}

// invalidRecord handles a record that is absent or not an object.
func invalidRecord(record any, fields []InputFieldConfig) Result {
	var errs []string
	for _, field := range fields {
		if field.Required {
			errs = append(errs, fieldError(field.FieldName, "Required"))
		}
	}
	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	if record == nil {
		// nothing supplied and nothing needed
		return Result{Valid: true, Data: map[string]any{}}
	}
	return Result{Errors: []string{fieldError(recordName, fmt.Sprintf("Expected object, received %s", typeName(record)))}}
}

func fieldError(name, reason string) string {
	return name + ": " + reason
}
