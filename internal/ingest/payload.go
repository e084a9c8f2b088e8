// Package ingest parses raw Sentry webhook payloads into the canonical
// shape consumed by the routing engine.
//
// The monitor's webhook body is loosely structured: diagnostic fields live
// under event.metadata and may be absent depending on the alert rule and SDK
// version. The normalizer prioritizes availability of the alert pipeline over
// strict validation — only a body that cannot be parsed as a structured
// object at all is rejected; individual missing diagnostic fields are filled
// with an explicit sentinel instead.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NotReceived is the sentinel stored for diagnostic fields the monitor did
// not include in the report.
const NotReceived = "not received"

// ErrMalformedPayload is returned when the webhook body cannot be parsed as
// a structured error report. It is reported to the caller and never retried
// internally.
var ErrMalformedPayload = errors.New("malformed payload")

// report mirrors the subset of the Sentry webhook body the bridge routes on.
type report struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ProjectName string `json:"project_name"`
	Event       struct {
		Metadata struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"metadata"`
		EventID string `json:"event_id"`
	} `json:"event"`
}

// NormalizedError is the canonical, fixed-shape form of one inbound error
// report. All fields are plain strings; optional diagnostics that were not
// received carry the NotReceived sentinel.
type NormalizedError struct {
	ID          string
	URL         string
	ProjectName string
	Type        string
	Value       string
	EventID     string
}

// Normalize parses a raw webhook body into a NormalizedError.
//
// It fails with ErrMalformedPayload when the body is not a JSON object or
// when the required routing fields (report id, project name) are missing.
// Absent diagnostic fields (type, value, event id) are not an error.
func Normalize(body []byte) (*NormalizedError, error) {
	var r report
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	id := strings.TrimSpace(r.ID)
	project := strings.TrimSpace(r.ProjectName)
	if id == "" {
		return nil, fmt.Errorf("%w: missing report id", ErrMalformedPayload)
	}
	if project == "" {
		return nil, fmt.Errorf("%w: missing project name", ErrMalformedPayload)
	}

	return &NormalizedError{
		ID:          id,
		URL:         orSentinel(r.URL),
		ProjectName: project,
		Type:        orSentinel(r.Event.Metadata.Type),
		Value:       orSentinel(r.Event.Metadata.Value),
		EventID:     orSentinel(r.Event.EventID),
	}, nil
}

// orSentinel substitutes the NotReceived sentinel for empty values.
func orSentinel(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotReceived
	}
	return s
}
