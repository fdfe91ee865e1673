package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"webhookutil/internal/core"
)

func TestFastSender_PostsJSON(t *testing.T) {
	rc := &receiver{}
	server := httptest.NewServer(rc.handler(http.StatusOK))
	defer server.Close()

	sender := NewFastSender(newFastClient(1, nil), 5*time.Second, nil)
	body := []byte(`{"content":"hi"}`)

	delivery, err := sender.Post(context.Background(), server.URL+"/hook", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if delivery.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", delivery.StatusCode)
	}
	if rc.seen().method != http.MethodPost {
		t.Errorf("expected POST, got %s", rc.seen().method)
	}
	if rc.seen().contentType != "application/json" {
		t.Errorf("expected application/json, got %s", rc.seen().contentType)
	}
	if !bytes.Equal(rc.seen().body, body) {
		t.Errorf("expected body %s, got %s", body, rc.seen().body)
	}
}

func TestFastSender_ConnectionError(t *testing.T) {
	sender := NewFastSender(newFastClient(1, nil), time.Second, nil)

	_, err := sender.Post(context.Background(), "http://127.0.0.1:1/hook", []byte(`{}`))
	if err == nil {
		t.Error("expected error")
	}
}

func TestFastSender_CancelledContext(t *testing.T) {
	rc := &receiver{}
	server := httptest.NewServer(rc.handler(http.StatusOK))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := NewFastSender(newFastClient(1, nil), time.Second, nil)
	if _, err := sender.Post(ctx, server.URL, []byte(`{}`)); err == nil {
		t.Error("expected error for a cancelled context")
	}
	if rc.count.Load() != 0 {
		t.Errorf("expected no request, got %d", rc.count.Load())
	}
}

func TestFastSender_PinnedHostNeverResolved(t *testing.T) {
	rc := &receiver{}
	server := httptest.NewServer(rc.handler(http.StatusOK))
	defer server.Close()

	port := serverPort(t, server)
	pin := &core.PinnedResolution{Hostname: "hooks.invalid", IP: "127.0.0.1", Port: port}
	sender := NewFastSender(newFastClient(1, pin), 5*time.Second, nil)

	target := "http://hooks.invalid:" + strconv.Itoa(port) + "/hook"
	if _, err := sender.Post(context.Background(), target, []byte(`{}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rc.count.Load() != 1 {
		t.Errorf("expected 1 request at the pinned address, got %d", rc.count.Load())
	}
	if rc.seen().host != "hooks.invalid:"+strconv.Itoa(port) {
		t.Errorf("expected Host header to keep the hostname, got %q", rc.seen().host)
	}
}
