// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Destination
// model — the project → chat mapping consulted on every inbound report.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/errbridge/go-sentry-telegram/internal/domain"
)

// ResolveDestination returns the destination configured for projectName, or
// ErrNotFound when the project has no mapping. Lookup is an exact match; the
// routing engine handles the fallback to the default chat.
func ResolveDestination(ctx context.Context, db *gorm.DB, projectName string) (*domain.Destination, error) {
	var d domain.Destination
	err := db.WithContext(ctx).
		Where("project_name = ?", projectName).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDestination fetches the destination for an exact (chatLink, projectName)
// pair, or ErrNotFound if the pair has never been registered.
func GetDestination(ctx context.Context, db *gorm.DB, chatLink, projectName string) (*domain.Destination, error) {
	var d domain.Destination
	err := db.WithContext(ctx).
		Where("chat_link = ? AND project_name = ?", chatLink, projectName).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDestination inserts a new destination row with a UUID primary key.
// Returns ErrDuplicate if the (chat_link, project_name) pair already exists;
// concurrent registrations are decided by the unique index alone.
func CreateDestination(ctx context.Context, db *gorm.DB, d *domain.Destination) (*domain.Destination, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return d, nil
}

// CountDestinations returns the total number of registered destinations.
func CountDestinations(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Destination{}).Count(&total).Error
	return total, err
}

// ListDestinationsPage returns a paginated slice of destinations ordered by
// creation time descending.
func ListDestinationsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Destination, error) {
	var out []domain.Destination
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
