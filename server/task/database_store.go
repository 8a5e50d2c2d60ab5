// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	a2a "github.com/go-a2a/a2a-agent"
)

// DefaultTableName is the table tasks are stored in unless configured otherwise.
const DefaultTableName = "tasks"

// DatabaseTaskStore is a database implementation of TaskStore using GORM.
type DatabaseTaskStore struct {
	db        *gorm.DB
	tableName string
}

var _ TaskStore = (*DatabaseTaskStore)(nil)

// DatabaseTaskStoreConfig holds configuration for DatabaseTaskStore.
type DatabaseTaskStoreConfig struct {
	DB          *gorm.DB
	TableName   string // Optional, defaults to "tasks"
	CreateTable bool   // Whether to create the table if it doesn't exist
}

// OpenSQLite opens a GORM connection on the pure Go SQLite driver.
// dsn is a file path or a "file:" URI such as "file::memory:?cache=shared".
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	return db, nil
}

// NewDatabaseTaskStore creates a new DatabaseTaskStore, creating its table when configured to.
func NewDatabaseTaskStore(ctx context.Context, config DatabaseTaskStoreConfig) (*DatabaseTaskStore, error) {
	if config.DB == nil {
		return nil, errors.New("database connection cannot be nil")
	}

	s := &DatabaseTaskStore{
		db:        config.DB,
		tableName: config.TableName,
	}
	if s.tableName == "" {
		s.tableName = DefaultTableName
	}

	if config.CreateTable {
		if err := s.table(ctx).AutoMigrate(&taskRecord{}); err != nil {
			return nil, NewTaskStoreError("initialize", "", err)
		}
	}
	return s, nil
}

func (s *DatabaseTaskStore) table(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.tableName)
}

// Save inserts or replaces task.
func (s *DatabaseTaskStore) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return NewTaskValidationError(task.ID, err)
	}

	err := s.table(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(newTaskRecord(task)).Error
	if err != nil {
		return NewTaskStoreError("save", task.ID, err)
	}
	return nil
}

// Get retrieves a task by its ID from the database.
func (s *DatabaseTaskStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	if taskID == "" {
		return nil, errors.New("task ID cannot be empty")
	}

	var rec taskRecord
	if err := s.table(ctx).Where("id = ?", taskID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a2a.TaskNotFoundError{TaskID: taskID}
		}
		return nil, NewTaskStoreError("get", taskID, err)
	}
	return rec.toTask(), nil
}

// Delete removes a task from the database.
func (s *DatabaseTaskStore) Delete(ctx context.Context, taskID string) error {
	if taskID == "" {
		return errors.New("task ID cannot be empty")
	}

	result := s.table(ctx).Where("id = ?", taskID).Delete(&taskRecord{})
	if result.Error != nil {
		return NewTaskStoreError("delete", taskID, result.Error)
	}
	if result.RowsAffected == 0 {
		return a2a.TaskNotFoundError{TaskID: taskID}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *DatabaseTaskStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
