package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

func TestConsoleChannel(t *testing.T) {
	var buf bytes.Buffer
	ch := NewConsoleChannelWriter(&buf)

	alert := models.NewAlert("db", models.SeverityError, "connection lost", "timeout")
	alert.DuplicateCount = 3

	if err := ch.Send(context.Background(), alert); err != nil {
		t.Fatalf("send: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "[ERROR]") {
		t.Errorf("output missing severity marker: %q", out)
	}
	if !strings.Contains(out, "connection lost") || !strings.Contains(out, "(x3)") {
		t.Errorf("output missing alert details: %q", out)
	}
}

func TestFileChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.log")
	ch, err := NewFileChannel(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	a1 := models.NewAlert("db", models.SeverityError, "first", "m1")
	a2 := models.NewAlert("db", models.SeverityWarning, "second", "m2")
	for _, a := range []*models.Alert{a1, a2} {
		if err := ch.Send(context.Background(), a); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2", len(lines))
	}

	var decoded models.Alert
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if decoded.Title != "first" {
		t.Errorf("decoded title = %q", decoded.Title)
	}
}

func TestWebhookChannel(t *testing.T) {
	var received *models.Alert
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Token") != "secret" {
			t.Errorf("custom header not forwarded")
		}
		var a models.Alert
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			t.Errorf("decode body: %v", err)
		}
		received = &a
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch, err := NewWebhookChannel(WebhookConfig{
		URL:     server.URL,
		Headers: map[string]string{"X-Token": "secret"},
	})
	if err != nil {
		t.Fatalf("new webhook: %v", err)
	}

	alert := models.NewAlert("db", models.SeverityCritical, "down", "no response")
	if err := ch.Send(context.Background(), alert); err != nil {
		t.Fatalf("send: %v", err)
	}
	if received == nil || received.ID != alert.ID {
		t.Errorf("server did not receive the alert")
	}
}

func TestWebhookChannelServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	ch, err := NewWebhookChannel(WebhookConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("new webhook: %v", err)
	}

	if err := ch.Send(context.Background(), models.NewAlert("db", models.SeverityError, "t", "m")); err == nil {
		t.Error("5xx response should be an error")
	}
}

func TestWebhookConfigValidation(t *testing.T) {
	if _, err := NewWebhookChannel(WebhookConfig{}); err == nil {
		t.Error("empty URL should be rejected")
	}
}

func TestEmailChannelBuildsMessage(t *testing.T) {
	ch, err := NewEmailChannel(EmailConfig{
		Host:       "smtp.example.com",
		Port:       587,
		From:       "alerts@example.com",
		Recipients: []string{"oncall@example.com"},
	})
	if err != nil {
		t.Fatalf("new email: %v", err)
	}

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	ch.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	alert := models.NewAlert("db", models.SeverityCritical, "database down", "no response for 30s")
	alert.Tags = []string{"prod"}
	if err := ch.Send(context.Background(), alert); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotAddr != "smtp.example.com:587" || gotFrom != "alerts@example.com" {
		t.Errorf("addr/from = %q/%q", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "oncall@example.com" {
		t.Errorf("to = %v", gotTo)
	}
	msg := string(gotMsg)
	if !strings.Contains(msg, "Subject: [CRITICAL] database down") {
		t.Errorf("subject missing: %q", msg)
	}
	if !strings.Contains(msg, "no response for 30s") || !strings.Contains(msg, "Tags: prod") {
		t.Errorf("body missing details: %q", msg)
	}
}

func TestEmailConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config EmailConfig
	}{
		{"missing host", EmailConfig{Port: 587, From: "a@b", Recipients: []string{"c@d"}}},
		{"missing port", EmailConfig{Host: "h", From: "a@b", Recipients: []string{"c@d"}}},
		{"missing from", EmailConfig{Host: "h", Port: 587, Recipients: []string{"c@d"}}},
		{"no recipients", EmailConfig{Host: "h", Port: 587, From: "a@b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEmailChannel(tt.config); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// stubChannel records deliveries and optionally fails.
type stubChannel struct {
	kind models.ChannelType
	sent []*models.Alert
	fail bool
}

func (s *stubChannel) Type() models.ChannelType { return s.kind }
func (s *stubChannel) Send(_ context.Context, a *models.Alert) error {
	s.sent = append(s.sent, a)
	if s.fail {
		return context.DeadlineExceeded
	}
	return nil
}
func (s *stubChannel) Close() error { return nil }

func TestDispatcher(t *testing.T) {
	console := &stubChannel{kind: models.ChannelConsole}
	webhook := &stubChannel{kind: models.ChannelWebhook, fail: true}

	d := NewDispatcher()
	d.Register(console)
	d.Register(webhook)

	alert := models.NewAlert("db", models.SeverityError, "t", "m")

	// Unregistered targets (file) are skipped; a failing channel does
	// not prevent delivery to the others.
	d.Dispatch(context.Background(), alert, []models.ChannelType{
		models.ChannelConsole, models.ChannelFile, models.ChannelWebhook,
	})

	if len(console.sent) != 1 {
		t.Errorf("console deliveries = %d, want 1", len(console.sent))
	}
	if len(webhook.sent) != 1 {
		t.Errorf("webhook deliveries = %d, want 1", len(webhook.sent))
	}
}
