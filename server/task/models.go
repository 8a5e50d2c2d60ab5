// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/go-json-experiment/json"

	a2a "github.com/go-a2a/a2a-agent"
)

// jsonColumn stores V as a JSON document in a single column.
type jsonColumn[V any] struct {
	V V
}

// GormDataType implements gorm's schema.GormDataTypeInterface.
func (jsonColumn[V]) GormDataType() string { return "json" }

// Value implements the driver.Valuer interface for database storage.
func (c jsonColumn[V]) Value() (driver.Value, error) {
	b, err := json.Marshal(c.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database retrieval.
func (c *jsonColumn[V]) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		var zero V
		c.V = zero
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into a JSON column", value)
	}

	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("cannot unmarshal JSON column: %w", err)
	}
	c.V = v
	return nil
}

// taskRecord is the database row of a task.
type taskRecord struct {
	ID        string                     `gorm:"primaryKey;size:64"`
	ContextID string                     `gorm:"size:64;not null;index"`
	State     string                     `gorm:"size:32;not null;index"`
	Status    jsonColumn[a2a.TaskStatus] `gorm:"not null"`
	History   jsonColumn[[]a2a.Message]  `gorm:"not null"`
	Metadata  jsonColumn[map[string]any]
	CreatedAt time.Time
	UpdatedAt time.Time
}

func newTaskRecord(task *a2a.Task) *taskRecord {
	return &taskRecord{
		ID:        task.ID,
		ContextID: task.ContextID,
		State:     string(task.Status.State),
		Status:    jsonColumn[a2a.TaskStatus]{V: task.Status},
		History:   jsonColumn[[]a2a.Message]{V: task.History},
		Metadata:  jsonColumn[map[string]any]{V: task.Metadata},
	}
}

func (r *taskRecord) toTask() *a2a.Task {
	return &a2a.Task{
		ID:        r.ID,
		ContextID: r.ContextID,
		Status:    r.Status.V,
		History:   r.History.V,
		Metadata:  r.Metadata.V,
		Kind:      a2a.KindTask,
	}
}
