// Tracked-error admin handlers.
//
// This file exposes read-only endpoints over the error record store:
//   - GET /errors  (list tracked errors, paginated)
//   - GET /status  (aggregate counters for dashboards and smoke checks)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/errbridge/go-sentry-telegram/internal/domain"
	"github.com/errbridge/go-sentry-telegram/internal/repo"
	"github.com/errbridge/go-sentry-telegram/internal/utils"
)

// ListErrorsResponse wraps a page of tracked errors and pagination
// information.
type ListErrorsResponse struct {
	Errors     []domain.ErrorRecord `json:"errors"`
	Pagination Pagination           `json:"pagination"`
}

// StatusResponse summarizes the bridge's stored state.
type StatusResponse struct {
	Errors       int64      `json:"errors"`
	LastReceived *time.Time `json:"last_received,omitempty"`
	Destinations int64      `json:"destinations"`
}

// ListErrors handles GET /errors with ?page= and ?page_size=. Records are
// returned most recently received first.
func (h *Handlers) ListErrors(c *gin.Context) {
	page, pageSize := utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), 20),
		defaultPageSize, maxPageSize)

	ctx := c.Request.Context()
	total, err := repo.CountErrorRecords(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list errors")
		return
	}

	items := []domain.ErrorRecord{}
	if total > 0 {
		items, err = repo.ListErrorRecordsPage(ctx, h.db, (page-1)*pageSize, pageSize)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list errors")
			return
		}
	}

	ok(c, http.StatusOK, ListErrorsResponse{
		Errors:     items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// Status handles GET /status.
func (h *Handlers) Status(c *gin.Context) {
	ctx := c.Request.Context()

	errCount, lastReceived, err := repo.ErrorStats(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not read error stats")
		return
	}
	destCount, _, err := repo.DestinationStats(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not read destination stats")
		return
	}

	ok(c, http.StatusOK, StatusResponse{
		Errors:       errCount,
		LastReceived: lastReceived,
		Destinations: destCount,
	})
}
