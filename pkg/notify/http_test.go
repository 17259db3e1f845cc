package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nocwatch/herald/internal/domain"
)

func TestHTTPSinkPublishSuccess(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Fatalf("missing header, got %s", got)
		}
		if got := r.Header.Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
			t.Fatalf("Content-Type = %s", got)
		}
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := newHTTPSink(context.Background(), SinkConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Test": "1"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPSink: %v", err)
	}

	evt := NewEvent(domain.Item{Source: "azure", Fingerprint: "f1"}, "Azure status line")
	if err := sink.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.Contains(body, `"source":"azure"`) {
		t.Fatalf("request body missing source: %s", body)
	}
	if !strings.Contains(body, `"line":"Azure status line"`) {
		t.Fatalf("request body missing line: %s", body)
	}
}

func TestHTTPSinkErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	sink, err := newHTTPSink(context.Background(), SinkConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			TimeoutSeconds: 1,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPSink: %v", err)
	}

	if err := sink.Publish(context.Background(), NewEvent(domain.Item{}, "")); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}
