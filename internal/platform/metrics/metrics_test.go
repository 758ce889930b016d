package metrics

import (
	"testing"
	"time"
)

func TestSnapshotCountsRequestsAndTransitions(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(503, 30*time.Millisecond)
	c.Record(429, 0)
	c.RecordTransition("review", "submit")
	c.RecordTransition("review", "submit")
	c.RecordTransition("assignment", "start")

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) || snap["errorsTotal"] != uint64(1) || snap["rateLimitedTotal"] != uint64(1) {
		t.Fatalf("unexpected request counters %v", snap)
	}
	if avg := snap["avgDurationMs"].(float64); avg < 13 || avg > 14 {
		t.Fatalf("unexpected average %v", avg)
	}
	transitions := snap["transitions"].(map[string]uint64)
	if transitions["review.submit"] != 2 || transitions["assignment.start"] != 1 {
		t.Fatalf("unexpected transitions %v", transitions)
	}
	c.RecordTransition("review", "submit")
	if transitions["review.submit"] != 2 {
		t.Fatal("snapshot must not alias live counters")
	}
}
