package telemetry

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCache_UpsertReplacesEntry(t *testing.T) {
	c := NewCache(testRegistry(t, "sensors/t1"))
	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	if !c.Upsert("sensors/t1", 10.0, t1) {
		t.Fatal("Upsert() = false for configured topic")
	}
	if !c.Upsert("sensors/t1", 12.5, t2) {
		t.Fatal("second Upsert() = false")
	}

	got, ok := c.Get("sensors/t1")
	if !ok {
		t.Fatal("Get() found no entry")
	}
	if got.Value != 12.5 || !got.Timestamp.Equal(t2) {
		t.Errorf("entry = (%v, %v), want (12.5, %v)", got.Value, got.Timestamp, t2)
	}
	if got.Config.Measurement != "temp" || got.Config.SensorName != "s1" {
		t.Errorf("entry config = %+v, want resolved sensors/t1 config", got.Config)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_UpsertUnknownTopic(t *testing.T) {
	c := NewCache(testRegistry(t, "sensors/t1"))

	if c.Upsert("sensors/unknown", 1, time.Now()) {
		t.Error("Upsert() = true for unconfigured topic")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if _, ok := c.Get("sensors/unknown"); ok {
		t.Error("Get() returned entry for unconfigured topic")
	}
	if c.Configured("sensors/unknown") {
		t.Error("Configured() = true for unconfigured topic")
	}
	if !c.Configured("sensors/t1") {
		t.Error("Configured() = false before any reading arrived")
	}
}

func TestCache_SnapshotSortedCopy(t *testing.T) {
	c := NewCache(testRegistry(t, "sensors/b", "sensors/a", "sensors/c"))
	now := time.Now()

	c.Upsert("sensors/c", 3, now)
	c.Upsert("sensors/a", 1, now)
	c.Upsert("sensors/b", 2, now)

	snap := c.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("Snapshot() len = %d, want 3", len(snap))
	}
	for i, want := range []string{"sensors/a", "sensors/b", "sensors/c"} {
		if snap[i].Topic != want {
			t.Errorf("snap[%d].Topic = %q, want %q", i, snap[i].Topic, want)
		}
	}

	// Mutating the snapshot must not reach the cache.
	snap[0].Value = 99
	if got, _ := c.Get("sensors/a"); got.Value != 1 {
		t.Errorf("cache entry changed through snapshot: %v", got.Value)
	}

	// Later upserts must not reach an earlier snapshot.
	c.Upsert("sensors/b", 20, now)
	if snap[1].Value != 2 {
		t.Errorf("snapshot changed after upsert: %v", snap[1].Value)
	}
}

func TestCache_SnapshotEmpty(t *testing.T) {
	c := NewCache(testRegistry(t, "sensors/t1"))
	if snap := c.Snapshot(); len(snap) != 0 {
		t.Errorf("Snapshot() of empty cache = %v", snap)
	}
}

// TestCache_ConcurrentAccess is meaningful under -race.
func TestCache_ConcurrentAccess(t *testing.T) {
	topics := make([]string, 8)
	for i := range topics {
		topics[i] = fmt.Sprintf("sensors/t%d", i)
	}
	c := NewCache(testRegistry(t, topics...))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				name := topics[(w+i)%len(topics)]
				ts := time.Unix(int64(i), 0)
				c.Upsert(name, float64(i), ts)
			}
		}(w)
	}

	for r := 0; r < 2; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				for _, e := range c.Snapshot() {
					// Value and timestamp are written together.
					if e.Timestamp.Unix() != int64(e.Value) {
						t.Errorf("torn entry for %s: value %v, timestamp %v", e.Topic, e.Value, e.Timestamp.Unix())
						return
					}
				}
			}
		}()
	}

	wg.Wait()

	if c.Len() != len(topics) {
		t.Errorf("Len() = %d, want %d", c.Len(), len(topics))
	}
}
