// Handler wiring.
//
// Handlers groups the HTTP endpoints of the bridge. It depends on abstract
// service and gateway interfaces to keep transport concerns separate from
// routing logic, and on a GORM handle for the read-only admin queries.
package handlers

import (
	"gorm.io/gorm"
)

// Page size bounds for the list endpoints.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handlers groups HTTP endpoints for webhook ingestion, destination
// management, and admin listings.
type Handlers struct {
	db     *gorm.DB
	router ReportRouter
	dests  DestinationRegistry
	sender MessageSender
	acker  IssueAcknowledger

	// ackStatus is the status written upstream once a report has been routed
	// and notified (normally "resolved").
	ackStatus string
}

// New constructs a Handlers instance bound to the given dependencies.
func New(db *gorm.DB, router ReportRouter, dests DestinationRegistry, sender MessageSender, acker IssueAcknowledger, ackStatus string) *Handlers {
	if ackStatus == "" {
		ackStatus = "resolved"
	}
	return &Handlers{
		db:        db,
		router:    router,
		dests:     dests,
		sender:    sender,
		acker:     acker,
		ackStatus: ackStatus,
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// newPagination derives the metadata block for a page of `total` rows.
func newPagination(page, pageSize int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
