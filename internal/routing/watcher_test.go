package routing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

const watcherTimeout = 5 * time.Second

func writeRulesFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write rules file: %v", err)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writeRulesFile(t, path, `
rules:
  - name: initial
    severities: [error]
    channels: [console]
`)

	applied := make(chan []models.RoutingRule, 4)
	w, err := NewWatcher(path, func(rules []models.RoutingRule) {
		applied <- rules
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// A broken rewrite must be skipped without applying anything.
	writeRulesFile(t, path, "rules: [{name: broken")

	writeRulesFile(t, path, `
rules:
  - name: updated
    severities: [critical]
    channels: [email, webhook]
`)

	var rules []models.RoutingRule
	select {
	case rules = <-applied:
	case <-time.After(watcherTimeout):
		t.Fatal("timed out waiting for rules reload")
	}

	// Multiple fs events can fire for one save; take the latest.
	for len(applied) > 0 {
		rules = <-applied
	}

	if len(rules) != 1 || rules[0].Name != "updated" {
		t.Fatalf("applied rules = %+v, want the updated rule", rules)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watcher run: %v", err)
		}
	case <-time.After(watcherTimeout):
		t.Fatal("watcher did not stop on cancel")
	}
}
