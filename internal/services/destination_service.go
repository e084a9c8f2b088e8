// Package services – DestinationService
//
// This file implements the registration side of the destination directory:
// binding a Telegram chat (id + invite link) to a monitor project. The
// operation is idempotent — registering an already-known (chat_link,
// project_name) pair returns the existing row unchanged — and race-safe,
// because the store's unique index arbitrates concurrent registrations and
// the loser simply rereads.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/errbridge/go-sentry-telegram/internal/domain"
	"github.com/errbridge/go-sentry-telegram/internal/repo"
)

// DestinationService manages project → chat destination registrations.
type DestinationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewDestinationService constructs a DestinationService.
func NewDestinationService(db *gorm.DB) *DestinationService {
	return &DestinationService{DB: db}
}

// Register binds chatLink/projectName to chatID. It returns the destination
// and whether this call created it. Registering an existing pair is a no-op
// that returns the stored row; two concurrent registrations of the same pair
// yield the same single row, with the store's unique index picking the winner.
func (s *DestinationService) Register(ctx context.Context, chatLink, projectName string, chatID int64) (*domain.Destination, bool, error) {
	chatLink = strings.TrimSpace(chatLink)
	projectName = strings.TrimSpace(projectName)
	if chatLink == "" || projectName == "" {
		return nil, false, ErrInvalidDestination
	}

	d, err := repo.CreateDestination(ctx, s.DB, &domain.Destination{
		ChatID:      chatID,
		ChatLink:    chatLink,
		ProjectName: projectName,
	})
	if err == nil {
		return d, true, nil
	}
	if !errors.Is(err, repo.ErrDuplicate) {
		return nil, false, err
	}

	// Pair already registered (possibly a split second ago by a concurrent
	// request): return the stored row unchanged.
	existing, rerr := repo.GetDestination(ctx, s.DB, chatLink, projectName)
	if rerr != nil {
		return nil, false, rerr
	}
	return existing, false, nil
}

// ListPage returns a page of registered destinations and the total count.
// It applies defaults for invalid page/pageSize.
func (s *DestinationService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Destination, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountDestinations(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Destination{}, 0, nil
	}

	items, err := repo.ListDestinationsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}
