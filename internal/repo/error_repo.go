// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ErrorRecord
// model — the authoritative table behind thread deduplication.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - CreateErrorRecord returns ErrDuplicate when a row for the same
//     (error_id, destination_id) already exists. Callers must treat this as
//     "a concurrent request already created it" and reread, never as fatal.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/errbridge/go-sentry-telegram/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that a row already exists for a unique key
// (error per destination, or chat link per project). It is the expected
// outcome for the loser of a concurrent insert race.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation detects unique-constraint violations across drivers that
// may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations;
	// Postgres says "duplicate key value violates unique constraint".
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

// FindErrorRecord returns the record for (errorID, destinationID), or
// ErrNotFound if the error has not been seen in that destination yet.
func FindErrorRecord(ctx context.Context, db *gorm.DB, errorID, destinationID string) (*domain.ErrorRecord, error) {
	var rec domain.ErrorRecord
	err := db.WithContext(ctx).
		Where("error_id = ? AND destination_id = ?", errorID, destinationID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateErrorRecord inserts a new ErrorRecord. The record ID is a randomly
// generated UUID and ReceivedAt defaults to now (UTC) when unset.
//
// Returns ErrDuplicate if a row for the same (error_id, destination_id)
// already exists; the store's unique index — not an application-level
// existence check — decides who wins a concurrent insert.
func CreateErrorRecord(ctx context.Context, db *gorm.DB, rec *domain.ErrorRecord) (*domain.ErrorRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// CountErrorRecords returns the total number of tracked errors.
func CountErrorRecords(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.ErrorRecord{}).Count(&total).Error
	return total, err
}

// ListErrorRecordsPage returns a paginated slice of tracked errors, most
// recently received first. The caller computes offset and limit
// (e.g., (page-1)*pageSize).
func ListErrorRecordsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ErrorRecord, error) {
	var out []domain.ErrorRecord
	err := db.WithContext(ctx).
		Order("received_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
