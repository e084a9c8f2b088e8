package repo

import (
	"context"
	"testing"
	"time"

	"github.com/errbridge/go-sentry-telegram/internal/domain"
)

func TestErrorStats_Empty(t *testing.T) {
	db := newRepoDB(t)

	count, last, err := ErrorStats(context.Background(), db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 0 || last != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, last)
	}
}

func TestErrorStats_ReturnsLatestReceivedAt(t *testing.T) {
	db := newRepoDB(t)

	older := time.Now().UTC().Add(-time.Hour)
	newer := time.Now().UTC()
	for i, ts := range []time.Time{older, newer} {
		if _, err := CreateErrorRecord(context.Background(), db, &domain.ErrorRecord{
			ErrorID:       []string{"a", "b"}[i],
			DestinationID: "d1",
			ProjectName:   "p1",
			ErrorType:     "t",
			ErrorValue:    "v",
			SourceURL:     "u",
			EventID:       "e",
			ThreadID:      1,
			ReceivedAt:    ts,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	count, last, err := ErrorStats(context.Background(), db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d; want 2", count)
	}
	if last == nil || last.Before(older.Add(30*time.Minute)) {
		t.Fatalf("expected latest received_at near %v, got %v", newer, last)
	}
}

func TestDestinationStats(t *testing.T) {
	db := newRepoDB(t)

	count, last, err := DestinationStats(context.Background(), db)
	if err != nil || count != 0 || last != nil {
		t.Fatalf("expected empty stats, got (%d, %v, %v)", count, last, err)
	}

	if _, err := CreateDestination(context.Background(), db, &domain.Destination{
		ChatID: -1, ChatLink: "https://t.me/+abc", ProjectName: "p1",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	count, last, err = DestinationStats(context.Background(), db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 1 || last == nil {
		t.Fatalf("expected (1, non-nil), got (%d, %v)", count, last)
	}
}
