package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsumerHandle(t *testing.T) {
	dir := t.TempDir()
	c := NewConsumer("", dir, nil)

	ev := ReservationConfirmedEvent{
		ReservationID: "reservation-1767261600000",
		UserUID:       "uid-1",
		Datetime:      "2026-01-01T10:00:00Z",
		CourtType:     "tennis",
		Location:      "Calle 1, Naco",
		ConfirmedAt:   "2025-12-30T12:00:00Z",
	}
	body, _ := json.Marshal(ev)
	if err := c.Handle(body); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if err := c.Handle(body); err != nil {
		t.Fatalf("second Handle: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "reservations.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, want := range []string{"reservation-1767261600000", "user=uid-1", `court="tennis"`} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("line %q missing %q", lines[0], want)
		}
	}
}

func TestConsumerHandleRejectsBadMessages(t *testing.T) {
	c := NewConsumer("", t.TempDir(), nil)
	for _, body := range []string{"{", `{"user_uid":"x"}`} {
		if err := c.Handle([]byte(body)); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}

func TestNilPublisherDiscards(t *testing.T) {
	p := NewPublisher("")
	if p != nil {
		t.Fatal("expected nil publisher without url")
	}
	if err := p.PublishReservationConfirmed(context.Background(), ReservationConfirmedEvent{}); err != nil {
		t.Fatalf("nil publisher returned %v", err)
	}
}
