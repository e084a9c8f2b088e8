// Package services – RoutingService
//
// This file implements the core of the bridge: the routing engine that turns
// a normalized error report into the thread it belongs to. It resolves the
// destination chat for the report's project, reuses the thread already linked
// to the error when one exists, and otherwise creates a thread and persists
// the authoritative record — with the store's unique index, not an
// application-level existence check, deciding the winner of concurrent
// deliveries.
//
// The engine is stateless between invocations: every decision is rebuilt from
// the store, so any number of short-lived request tasks can route in parallel
// without shared in-process state.
//
// Observability: Route is OpenTelemetry-instrumented; spans carry the error
// and destination identifiers. Prometheus counters track routed reports,
// created threads, absorbed duplicate races, and fallback routings.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/errbridge/go-sentry-telegram/internal/domain"
	"github.com/errbridge/go-sentry-telegram/internal/ingest"
	"github.com/errbridge/go-sentry-telegram/internal/repo"
)

// DefaultDestinationID is the synthetic destination identifier under which
// errors of unmapped projects are recorded. Using a fixed id keeps the
// (error_id, destination_id) uniqueness guarantee intact on the fallback path.
const DefaultDestinationID = "default"

var (
	reportsRouted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "reports_routed_total",
			Help:      "Error reports routed, labeled by outcome.",
		},
		[]string{"outcome"}, // "reused", "created", "failed"
	)
	duplicateRaces = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "duplicate_races_total",
			Help:      "Persistence races absorbed by rereading the winning record.",
		},
	)
	fallbackRoutes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "fallback_routes_total",
			Help:      "Reports routed to the default chat because their project is unmapped.",
		},
	)
)

func init() {
	prometheus.MustRegister(reportsRouted, duplicateRaces, fallbackRoutes)
}

// ThreadCreator is the narrow chat-gateway contract the routing engine
// depends on. The production implementation is gateway.TelegramClient; tests
// substitute fakes to observe or fail thread creation.
type ThreadCreator interface {
	// CreateForumTopic opens a discussion thread in chatID and returns its id.
	CreateForumTopic(ctx context.Context, chatID int64, title string) (int64, error)
}

// RoutingOutcome is the result of routing one normalized error report. The
// engine itself performs no message sending or upstream acknowledgment; the
// boundary handler drives those side effects from this value, which keeps the
// routing logic testable without network effects.
type RoutingOutcome struct {
	// Destination is the resolved chat destination (possibly the synthetic
	// default destination).
	Destination *domain.Destination
	// ThreadID is the authoritative thread for this error in Destination.
	ThreadID int64
	// MessageText is the notification body to post into the thread.
	MessageText string
	// Created reports whether this call created the thread (first sighting)
	// as opposed to reusing a previously linked one.
	Created bool
}

// RoutingService resolves destinations and guarantees one thread per error
// per destination. It holds no long-lived state beyond its dependencies.
type RoutingService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Threads creates discussion threads in the chat service.
	Threads ThreadCreator
	// DefaultChatID hosts threads for projects without a registered
	// destination.
	DefaultChatID int64
}

// NewRoutingService constructs a RoutingService.
func NewRoutingService(db *gorm.DB, threads ThreadCreator, defaultChatID int64) *RoutingService {
	return &RoutingService{DB: db, Threads: threads, DefaultChatID: defaultChatID}
}

// Route resolves where the report belongs and returns the authoritative
// thread for it.
//
// Algorithm:
//  1. Resolve the destination for the report's project; unmapped projects
//     route to the default chat (warn log, not an error).
//  2. Reuse the thread already linked to (error_id, destination_id) when the
//     record exists — repeated delivery never creates a second thread.
//  3. Otherwise create a thread, then persist the record. If persistence
//     reports a duplicate, a concurrent delivery won the race: discard the
//     just-created thread reference and reread the winning record, so the
//     stored thread id is always the first one ever linked.
//  4. Compose the notification text from the fixed template.
//
// Gateway failure during thread creation surfaces as ErrThreadCreationFailed
// wrapping the cause; the monitor's redelivery is the retry mechanism.
func (s *RoutingService) Route(ctx context.Context, e *ingest.NormalizedError) (*RoutingOutcome, error) {
	tr := otel.Tracer("services/RoutingService")
	ctx, span := tr.Start(ctx, "Route",
		trace.WithAttributes(
			attribute.String("error.id", e.ID),
			attribute.String("project.name", e.ProjectName),
		),
	)
	defer span.End()

	dest, err := s.resolveDestination(ctx, e.ProjectName)
	if err != nil {
		reportsRouted.WithLabelValues("failed").Inc()
		return nil, err
	}
	span.SetAttributes(attribute.String("destination.id", dest.ID))

	// Idempotency fast path: the error already has a thread here.
	rec, err := repo.FindErrorRecord(ctx, s.DB, e.ID, dest.ID)
	switch {
	case err == nil:
		reportsRouted.WithLabelValues("reused").Inc()
		return &RoutingOutcome{
			Destination: dest,
			ThreadID:    rec.ThreadID,
			MessageText: composeMessage(e),
		}, nil
	case !errors.Is(err, repo.ErrNotFound):
		reportsRouted.WithLabelValues("failed").Inc()
		return nil, err
	}

	// First sighting (as far as this task can tell): create the thread, then
	// let the store decide whether we actually were first.
	threadID, err := s.Threads.CreateForumTopic(ctx, dest.ChatID, threadTitle(e))
	if err != nil {
		reportsRouted.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrThreadCreationFailed, err)
	}

	created := true
	_, err = repo.CreateErrorRecord(ctx, s.DB, &domain.ErrorRecord{
		ErrorID:       e.ID,
		DestinationID: dest.ID,
		ProjectName:   e.ProjectName,
		ErrorType:     e.Type,
		ErrorValue:    e.Value,
		SourceURL:     e.URL,
		EventID:       e.EventID,
		ThreadID:      threadID,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent delivery won the race. The topic we just created is
		// orphaned in the chat service; the store keeps linking the first one.
		duplicateRaces.Inc()
		winner, rerr := repo.FindErrorRecord(ctx, s.DB, e.ID, dest.ID)
		if rerr != nil {
			reportsRouted.WithLabelValues("failed").Inc()
			return nil, rerr
		}
		log.Warn().
			Str("error_id", e.ID).
			Str("destination_id", dest.ID).
			Int64("orphaned_thread_id", threadID).
			Int64("linked_thread_id", winner.ThreadID).
			Msg("lost persistence race; reusing first linked thread")
		threadID = winner.ThreadID
		created = false
	} else if err != nil {
		reportsRouted.WithLabelValues("failed").Inc()
		return nil, err
	}

	if created {
		reportsRouted.WithLabelValues("created").Inc()
	} else {
		reportsRouted.WithLabelValues("reused").Inc()
	}
	return &RoutingOutcome{
		Destination: dest,
		ThreadID:    threadID,
		MessageText: composeMessage(e),
		Created:     created,
	}, nil
}

// resolveDestination looks up the project mapping, falling back to the
// default chat when the project is unmapped. The gap is logged, never fatal.
func (s *RoutingService) resolveDestination(ctx context.Context, projectName string) (*domain.Destination, error) {
	dest, err := repo.ResolveDestination(ctx, s.DB, projectName)
	if err == nil {
		return dest, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	fallbackRoutes.Inc()
	log.Warn().Str("project_name", projectName).
		Msg("no destination registered for project; routing to default chat")
	return &domain.Destination{
		ID:          DefaultDestinationID,
		ChatID:      s.DefaultChatID,
		ProjectName: projectName,
	}, nil
}

// threadTitle derives the human-readable topic title from the error identity.
func threadTitle(e *ingest.NormalizedError) string {
	return fmt.Sprintf("%s %s", e.ID, e.Type)
}

// composeMessage renders the fixed notification template. Field order is part
// of the contract; consumers and tests rely on it byte for byte.
func composeMessage(e *ingest.NormalizedError) string {
	return fmt.Sprintf("Project: %s\nError: %s: %s\n%s", e.ProjectName, e.Type, e.Value, e.URL)
}
