package queue_test

import (
	"testing"

	"github.com/redis/go-redis/v9"

	"jobmate/workday-discovery/internal/model"
	"jobmate/workday-discovery/internal/queue"
)

func message(data string) redis.XMessage {
	return redis.XMessage{
		ID:     "1-0",
		Values: map[string]any{"unit": data},
	}
}

func TestParseMessage_ListingUnit(t *testing.T) {
	msg := message(`{"id":"u1","kind":"listing","portal":{"portalUrl":"https://acme.wd1.myworkdayjobs.com/Ext"}}`)

	consumed, err := queue.ParseMessage(msg)
	if err != nil {
		t.Fatalf("ParseMessage returned unexpected error: %v", err)
	}
	if consumed.MessageID != "1-0" {
		t.Errorf("MessageID = %q, want 1-0", consumed.MessageID)
	}
	if consumed.Unit.Kind != queue.KindListing {
		t.Errorf("Kind = %q, want listing", consumed.Unit.Kind)
	}
	if consumed.Unit.Portal == nil || consumed.Unit.Portal.PortalURL == "" {
		t.Errorf("Portal = %+v, want populated config", consumed.Unit.Portal)
	}
}

func TestParseMessage_JobUnit(t *testing.T) {
	msg := message(`{"id":"u2","kind":"job","job":{"title":"Engineer","location":"Remote","url":"https://x/job/1"}}`)

	consumed, err := queue.ParseMessage(msg)
	if err != nil {
		t.Fatalf("ParseMessage returned unexpected error: %v", err)
	}
	want := model.JobSummary{Title: "Engineer", Location: "Remote", URL: "https://x/job/1"}
	if consumed.Unit.Job == nil || *consumed.Unit.Job != want {
		t.Errorf("Job = %+v, want %+v", consumed.Unit.Job, want)
	}
}

func TestParseMessage_Malformed(t *testing.T) {
	cases := []struct {
		name string
		msg  redis.XMessage
	}{
		{"missing field", redis.XMessage{ID: "1-0", Values: map[string]any{}}},
		{"not JSON", message("{")},
		{"unknown kind", message(`{"id":"u","kind":"bogus"}`)},
		{"listing without portal", message(`{"id":"u","kind":"listing"}`)},
		{"job without summary", message(`{"id":"u","kind":"job"}`)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := queue.ParseMessage(c.msg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
