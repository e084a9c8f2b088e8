// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// by the status endpoint. Each function is context-aware and safe to call
// from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/errbridge/go-sentry-telegram/internal/domain"
)

// ErrorStats returns aggregate metadata for tracked errors: the total number
// of rows and the most recent ReceivedAt among them. When no errors have been
// recorded, the returned count is 0 and lastReceived is nil.
func ErrorStats(ctx context.Context, db *gorm.DB) (count int64, lastReceived *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ErrorRecord{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest received_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		ReceivedAt time.Time
	}
	if err = q.Select("received_at").Order("received_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.ReceivedAt, nil
}

// DestinationStats returns the number of registered destinations and the
// timestamp of the most recent registration, or nil when there are none.
func DestinationStats(ctx context.Context, db *gorm.DB) (count int64, lastRegistered *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Destination{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
