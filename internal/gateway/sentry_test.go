package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAcknowledge_Success(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"resolved"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewSentryClient(srv.URL, "secret-token", 2*time.Second)
	if err := client.Acknowledge(context.Background(), "abc123", "resolved"); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Fatalf("method = %q; want PUT", gotMethod)
	}
	if gotPath != "/api/0/issues/abc123/" {
		t.Fatalf("path = %q; want issue update path", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("auth header = %q; want bearer token", gotAuth)
	}
	if gotBody["status"] != "resolved" {
		t.Fatalf("body = %v; want status=resolved", gotBody)
	}
}

func TestAcknowledge_Non2xx_WrapsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"invalid token"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewSentryClient(srv.URL, "bad-token", 2*time.Second)
	err := client.Acknowledge(context.Background(), "abc123", "resolved")

	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GatewayError, got %v", err)
	}
	if ge.Op != "sentry.acknowledge" {
		t.Fatalf("op = %q; want sentry.acknowledge", ge.Op)
	}
}

func TestAcknowledge_ConnectionRefused(t *testing.T) {
	// Server closed before the call: the single attempt surfaces the transport error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewSentryClient(url, "t", time.Second)
	if err := client.Acknowledge(context.Background(), "abc123", "resolved"); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestGatewayError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &GatewayError{Op: "telegram.sendMessage", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to reach the cause")
	}
	if err.Error() == "" {
		t.Fatalf("expected formatted message")
	}
}
