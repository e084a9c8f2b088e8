// Destination HTTP handlers.
//
// This file exposes REST endpoints for the project → chat mapping:
//   - POST /destinations  (register, idempotent)
//   - GET  /destinations  (list, paginated)
//
// Handlers are transport-thin: they validate input, call the destination
// service, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/errbridge/go-sentry-telegram/internal/domain"
	"github.com/errbridge/go-sentry-telegram/internal/services"
	"github.com/errbridge/go-sentry-telegram/internal/utils"
)

// DestinationRegistry defines the destination operations consumed by HTTP
// handlers. Implementations should be safe for concurrent use and must honor
// the provided context.
type DestinationRegistry interface {
	// Register idempotently binds a chat to a project; the bool reports
	// whether this call created the row.
	Register(ctx context.Context, chatLink, projectName string, chatID int64) (*domain.Destination, bool, error)
	// ListPage returns a page of destinations and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Destination, int64, error)
}

// RegisterDestinationRequest is the JSON payload for registering a destination.
type RegisterDestinationRequest struct {
	// ChatLink is the shareable invite link of the Telegram group.
	ChatLink string `json:"chat_link" binding:"required" example:"https://t.me/+AbCdEf"`
	// ProjectName is the monitor-side project routed to this chat.
	ProjectName string `json:"project_name" binding:"required" example:"p1"`
	// ChatID is the Telegram supergroup identifier hosting the threads.
	ChatID int64 `json:"chat_id" example:"-1001234567890"`
}

// RegisterDestinationResponse wraps the registered destination and whether
// the pair was newly created or already existed.
type RegisterDestinationResponse struct {
	Destination domain.Destination `json:"destination"`
	Result      string             `json:"result" example:"created"`
}

// ListDestinationsResponse wraps a page of destinations and pagination
// information.
type ListDestinationsResponse struct {
	Destinations []domain.Destination `json:"destinations"`
	Pagination   Pagination           `json:"pagination"`
}

// RegisterDestination handles POST /destinations.
//
// Registration is idempotent: posting the same (chat_link, project_name)
// pair again returns 200 with result "already_exists" instead of creating a
// second row; a fresh pair answers 201 with result "created".
func (h *Handlers) RegisterDestination(c *gin.Context) {
	var req RegisterDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_link and project_name are required")
		return
	}

	d, created, err := h.dests.Register(c.Request.Context(), req.ChatLink, req.ProjectName, req.ChatID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDestination) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeRegisterFailed, "could not register destination")
		return
	}

	resp := RegisterDestinationResponse{Destination: *d, Result: "already_exists"}
	status := http.StatusOK
	if created {
		resp.Result = "created"
		status = http.StatusCreated
	}
	ok(c, status, resp)
}

// ListDestinations handles GET /destinations with ?page= and ?page_size=.
func (h *Handlers) ListDestinations(c *gin.Context) {
	page, pageSize := utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), 20),
		defaultPageSize, maxPageSize)

	items, total, err := h.dests.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list destinations")
		return
	}

	ok(c, http.StatusOK, ListDestinationsResponse{
		Destinations: items,
		Pagination:   newPagination(page, pageSize, total),
	})
}
