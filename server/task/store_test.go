// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	a2a "github.com/go-a2a/a2a-agent"
)

func newSQLiteStore(t *testing.T) *DatabaseTaskStore {
	t.Helper()

	db, err := OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	s, err := NewDatabaseTaskStore(t.Context(), DatabaseTaskStoreConfig{DB: db, CreateTable: true})
	if err != nil {
		t.Fatalf("NewDatabaseTaskStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close(t.Context()) })
	return s
}

func newStores(t *testing.T) map[string]TaskStore {
	return map[string]TaskStore{
		"memory": NewInMemoryTaskStore(),
		"sqlite": newSQLiteStore(t),
	}
}

func sampleTask(id string) *a2a.Task {
	msg := a2a.NewUserTextMessage("hello", "ctx-1", id)
	msg.Metadata = map[string]any{"goal": "book"}
	task := a2a.NewSubmittedTask(msg, id, "ctx-1", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	return task
}

func TestTaskStore(t *testing.T) {
	t.Parallel()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := t.Context()

			if _, err := store.Get(ctx, "missing"); !a2a.IsTaskNotFound(err) {
				t.Errorf("Get(missing) error = %v, want TaskNotFoundError", err)
			}
			if err := store.Delete(ctx, "missing"); !a2a.IsTaskNotFound(err) {
				t.Errorf("Delete(missing) error = %v, want TaskNotFoundError", err)
			}

			task := sampleTask("task-1")
			if err := store.Save(ctx, task); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := store.Get(ctx, "task-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if diff := cmp.Diff(task, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Get() mismatch (-want +got):\n%s", diff)
			}

			// update in place
			got.Status = a2a.TaskStatus{State: a2a.TaskStateCompleted, Message: a2a.NewAgentTextMessage("done", "ctx-1", "task-1")}
			got.History = append(got.History, *got.Status.Message)
			if err := store.Save(ctx, got); err != nil {
				t.Fatalf("Save() update error = %v", err)
			}
			updated, _ := store.Get(ctx, "task-1")
			if updated.Status.State != a2a.TaskStateCompleted || len(updated.History) != 2 {
				t.Errorf("updated task = state %q, %d history entries", updated.Status.State, len(updated.History))
			}

			if err := store.Delete(ctx, "task-1"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := store.Get(ctx, "task-1"); !a2a.IsTaskNotFound(err) {
				t.Errorf("Get() after Delete error = %v", err)
			}
		})
	}
}

func TestTaskStoreRejectsInvalidTasks(t *testing.T) {
	t.Parallel()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var verr TaskValidationError
			if err := store.Save(t.Context(), &a2a.Task{ID: "x"}); !errors.As(err, &verr) {
				t.Errorf("Save(invalid) error = %v, want TaskValidationError", err)
			}
			if err := store.Save(t.Context(), nil); err == nil {
				t.Error("Save(nil) succeeded")
			}
			if _, err := store.Get(t.Context(), ""); err == nil {
				t.Error("Get(\"\") succeeded")
			}
		})
	}
}

func TestInMemoryTaskStoreCopies(t *testing.T) {
	t.Parallel()

	s := NewInMemoryTaskStore()
	task := sampleTask("t")
	_ = s.Save(t.Context(), task)

	task.History[0].Parts[0].Text = "mutated"
	got, _ := s.Get(t.Context(), "t")
	got.Metadata = map[string]any{"x": 1}

	again, _ := s.Get(t.Context(), "t")
	if again.History[0].Parts[0].Text != "hello" || again.Metadata["x"] != nil {
		t.Error("store shares memory with callers")
	}

	_ = s.Close(t.Context())
	if s.Len() != 0 {
		t.Errorf("Len() after Close = %d", s.Len())
	}
}

func TestDatabaseTaskStoreCustomTable(t *testing.T) {
	t.Parallel()

	db, err := OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewDatabaseTaskStore(t.Context(), DatabaseTaskStoreConfig{DB: db, TableName: "agent_tasks", CreateTable: true})
	if err != nil {
		t.Fatalf("NewDatabaseTaskStore() error = %v", err)
	}
	defer s.Close(t.Context())

	if err := s.Save(t.Context(), sampleTask("t")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !db.Migrator().HasTable("agent_tasks") {
		t.Error("custom table was not created")
	}
	if _, err := NewDatabaseTaskStore(t.Context(), DatabaseTaskStoreConfig{}); err == nil {
		t.Error("NewDatabaseTaskStore(nil DB) succeeded")
	}
}
