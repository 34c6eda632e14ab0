package queue

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewAuditEvent(t *testing.T) {
	ev := NewAuditEvent(EventDeleted, "9", "42")
	if _, err := uuid.Parse(ev.ID); err != nil {
		t.Fatalf("id %q is not a uuid: %v", ev.ID, err)
	}
	if ev.OccurredAt.Location() != time.UTC {
		t.Fatalf("occurred_at not UTC: %v", ev.OccurredAt)
	}
}

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	ev := AuditEvent{
		ID:         "0f8fad5b-d9cb-469f-a165-70867728950e",
		Kind:       BarDeleted,
		EntityID:   "5",
		OccurredAt: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
	}
	if err := writeLine(&buf, ev); err != nil {
		t.Fatal(err)
	}
	want := "[2026-10-14T09:30:00Z] bar.deleted | entity=5 | actor=- | id=0f8fad5b-d9cb-469f-a165-70867728950e\n"
	if buf.String() != want {
		t.Fatalf("line = %q, want %q", buf.String(), want)
	}
}

func TestConsumerHandleAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.log")
	c := NewConsumer("", "venue.audit", path, nil)

	for _, kind := range []string{EventDeleted, ArrangementCreated} {
		body, _ := json.Marshal(NewAuditEvent(kind, "1", ""))
		if err := c.handle(body); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	if err := c.handle([]byte("{")); err == nil {
		t.Fatal("malformed body accepted")
	}
	if err := c.handle([]byte(`{"entity_id":"1"}`)); err == nil {
		t.Fatal("event without kind accepted")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], EventDeleted) || !strings.Contains(lines[1], ArrangementCreated) {
		t.Fatalf("audit log = %q", data)
	}
}
