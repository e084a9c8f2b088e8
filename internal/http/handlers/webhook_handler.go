// Webhook ingestion handler.
//
// This file exposes the inbound boundary of the bridge:
//   - POST /sentry-webhook (ingest one error report)
//
// The endpoint always answers HTTP 200 with a `{status}` envelope — error
// detail goes in the body only. A non-200 answer would teach the monitor to
// retry the HTTP delivery for internal persistence races, which the routing
// engine already absorbs; genuine integration failures are reported as
// `{status:"error"}` and recovered through the monitor's own redelivery of
// unacknowledged alerts.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/errbridge/go-sentry-telegram/internal/http/middleware"
	"github.com/errbridge/go-sentry-telegram/internal/ingest"
	"github.com/errbridge/go-sentry-telegram/internal/services"
)

// ReportRouter is the routing-engine contract consumed by the webhook
// handler. Implementations must be safe for concurrent use and honor the
// provided context.
type ReportRouter interface {
	// Route resolves the destination and authoritative thread for a report.
	Route(ctx context.Context, e *ingest.NormalizedError) (*services.RoutingOutcome, error)
}

// MessageSender posts notification text into a chat thread.
type MessageSender interface {
	// SendMessage delivers text to chatID; threadID of 0 targets the general chat.
	SendMessage(ctx context.Context, chatID, threadID int64, text string) error
}

// IssueAcknowledger updates the report's status upstream so the monitor stops
// re-sending it.
type IssueAcknowledger interface {
	// Acknowledge sets the status of issueID (e.g. "resolved").
	Acknowledge(ctx context.Context, issueID, status string) error
}

// WebhookResponse is the fixed acknowledgment envelope of the ingestion
// endpoint. Status is "received" on success and "error" otherwise; Message
// carries detail only in the error case.
type WebhookResponse struct {
	Status  string `json:"status" example:"received"`
	Message string `json:"message,omitempty" example:"thread creation failed"`
}

// IngestReport handles POST /sentry-webhook.
//
// Side-effect order is fixed: normalize → route (create thread + persist if
// first sighting) → send notification → acknowledge upstream. The send and
// acknowledge steps degrade the response to `{status:"error"}` on failure but
// never change the HTTP status.
func (h *Handlers) IngestReport(c *gin.Context) {
	lg := middleware.LoggerFrom(c)

	body, err := c.GetRawData()
	if err != nil {
		ok(c, http.StatusOK, WebhookResponse{Status: "error", Message: "unreadable request body"})
		return
	}

	e, err := ingest.Normalize(body)
	if err != nil {
		lg.Warn().Err(err).Msg("malformed report payload")
		ok(c, http.StatusOK, WebhookResponse{Status: "error", Message: err.Error()})
		return
	}

	out, err := h.router.Route(c.Request.Context(), e)
	if err != nil {
		lg.Error().Err(err).Str("error_id", e.ID).Msg("routing failed")
		ok(c, http.StatusOK, WebhookResponse{Status: "error", Message: err.Error()})
		return
	}

	lg.Info().
		Str("error_id", e.ID).
		Str("destination_id", out.Destination.ID).
		Int64("thread_id", out.ThreadID).
		Bool("created", out.Created).
		Msg("report routed")

	if err := h.sender.SendMessage(c.Request.Context(), out.Destination.ChatID, out.ThreadID, out.MessageText); err != nil {
		lg.Error().Err(err).Int64("thread_id", out.ThreadID).Msg("notification send failed")
		ok(c, http.StatusOK, WebhookResponse{Status: "error", Message: err.Error()})
		return
	}

	if err := h.acker.Acknowledge(c.Request.Context(), e.ID, h.ackStatus); err != nil {
		lg.Error().Err(err).Str("error_id", e.ID).Msg("upstream acknowledge failed")
		ok(c, http.StatusOK, WebhookResponse{Status: "error", Message: err.Error()})
		return
	}

	ok(c, http.StatusOK, WebhookResponse{Status: "received"})
}
