package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func telegramStub(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *TelegramClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewTelegramClient(srv.URL, "test-token", 2*time.Second)
}

func TestCreateForumTopic_Success(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	_, client := telegramStub(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_thread_id": 42, "name": "abc123 ValueError"},
		})
	})

	threadID, err := client.CreateForumTopic(context.Background(), -1001234, "abc123 ValueError")
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	if threadID != 42 {
		t.Fatalf("thread id = %d; want 42", threadID)
	}
	if gotPath != "/bottest-token/createForumTopic" {
		t.Fatalf("path = %q; want token-scoped createForumTopic", gotPath)
	}
	if gotBody["name"] != "abc123 ValueError" {
		t.Fatalf("name = %v; want topic title", gotBody["name"])
	}
}

func TestCreateForumTopic_APIError_WrapsGatewayError(t *testing.T) {
	_, client := telegramStub(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": false, "description": "Bad Request: not enough rights",
		})
	})

	_, err := client.CreateForumTopic(context.Background(), -1001234, "t")
	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GatewayError, got %v", err)
	}
	if ge.Op != "telegram.createForumTopic" {
		t.Fatalf("op = %q; want telegram.createForumTopic", ge.Op)
	}
}

func TestSendMessage_ThreadedAndGeneral(t *testing.T) {
	var bodies []map[string]any
	_, client := telegramStub(t, func(w http.ResponseWriter, r *http.Request) {
		var b map[string]any
		_ = json.NewDecoder(r.Body).Decode(&b)
		bodies = append(bodies, b)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{}})
	})

	if err := client.SendMessage(context.Background(), -1, 42, "hello"); err != nil {
		t.Fatalf("send threaded: %v", err)
	}
	if err := client.SendMessage(context.Background(), -1, 0, "hello"); err != nil {
		t.Fatalf("send general: %v", err)
	}

	if _, ok := bodies[0]["message_thread_id"]; !ok {
		t.Fatalf("threaded send should carry message_thread_id, got %v", bodies[0])
	}
	if _, ok := bodies[1]["message_thread_id"]; ok {
		t.Fatalf("general send must not carry message_thread_id, got %v", bodies[1])
	}
}

func TestTelegram_SingleAttempt_NoRetry(t *testing.T) {
	var calls atomic.Int64
	_, client := telegramStub(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"ok":false,"description":"bad gateway"}`))
	})

	if _, err := client.CreateForumTopic(context.Background(), -1, "t"); err == nil {
		t.Fatalf("expected failure")
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected exactly one attempt, got %d", n)
	}
}

func TestTelegram_ContextCancelled(t *testing.T) {
	_, client := telegramStub(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{}})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.SendMessage(ctx, -1, 0, "hello")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GatewayError wrapper, got %v", err)
	}
}
