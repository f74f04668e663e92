// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestBus_SynchronousDeliveryOrder(t *testing.T) {
	bus := New[int](Config{Name: "test"})
	defer bus.Close()

	var got []int
	bus.Subscribe(func(v int) { got = append(got, v*10) })
	bus.Subscribe(func(v int) { got = append(got, v*10+1) })

	bus.Publish(1)
	bus.Publish(2)

	want := []int{10, 11, 20, 21}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if bus.Published() != 2 {
		t.Errorf("Published() = %d, want 2", bus.Published())
	}
}

func TestBus_WorkerPoolDeliversAll(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		queue   int
	}{
		{"single worker", 1, 1},
		{"pool", 4, 16},
		{"default queue", 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := New[int](Config{Name: tt.name, Workers: tt.workers, QueueSize: tt.queue})

			var sum, count atomic.Int64
			for i := 0; i < 3; i++ {
				bus.Subscribe(func(v int) {
					sum.Add(int64(v))
					count.Add(1)
				})
			}

			for i := 1; i <= 100; i++ {
				bus.Publish(i)
			}
			bus.Drain()

			if count.Load() != 300 {
				t.Errorf("deliveries = %d, want 300", count.Load())
			}
			if sum.Load() != 3*5050 {
				t.Errorf("sum = %d, want %d", sum.Load(), 3*5050)
			}
			bus.Close()
		})
	}
}

func TestBus_PanickingSubscriberIsIsolated(t *testing.T) {
	bus := New[string](Config{Name: "panic"})

	var mu sync.Mutex
	var delivered []string
	bus.Subscribe(func(string) { panic("boom") })
	bus.Subscribe(func(s string) {
		mu.Lock()
		delivered = append(delivered, s)
		mu.Unlock()
	})

	bus.Publish("a")

	if len(delivered) != 1 || delivered[0] != "a" {
		t.Errorf("delivered = %v, want [a]", delivered)
	}
	if bus.Panics() != 1 {
		t.Errorf("Panics() = %d, want 1", bus.Panics())
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := New[int](Config{Workers: 2})
	var count atomic.Int64
	bus.Subscribe(func(int) { count.Add(1) })

	bus.Close()
	bus.Close()
	bus.Publish(1)

	if count.Load() != 0 {
		t.Errorf("delivered after close: %d", count.Load())
	}
	if bus.Subscribers() != 1 {
		t.Errorf("Subscribers() = %d, want 1", bus.Subscribers())
	}
}

func TestBus_KeyedDeliveryIsOrderedPerKey(t *testing.T) {
	type item struct{ key, seq int }

	bus := NewKeyed(Config{Name: "keyed", Workers: 4, QueueSize: 8}, func(v item) uint64 { return uint64(v.key) })
	defer bus.Close()

	var mu sync.Mutex
	seen := make(map[int][]int)
	var inFlight [5]atomic.Int32
	var overlaps atomic.Int32
	bus.Subscribe(func(v item) {
		if inFlight[v.key].Add(1) > 1 {
			overlaps.Add(1)
		}
		mu.Lock()
		seen[v.key] = append(seen[v.key], v.seq)
		mu.Unlock()
		inFlight[v.key].Add(-1)
	})

	for seq := 0; seq < 200; seq++ {
		for key := 0; key < 5; key++ {
			bus.Publish(item{key: key, seq: seq})
		}
	}
	bus.Drain()

	if overlaps.Load() != 0 {
		t.Errorf("%d deliveries overlapped for the same key", overlaps.Load())
	}
	for key := 0; key < 5; key++ {
		got := seen[key]
		if len(got) != 200 {
			t.Fatalf("key %d: %d deliveries, want 200", key, len(got))
		}
		for i, seq := range got {
			if seq != i {
				t.Fatalf("key %d: delivery %d has seq %d", key, i, seq)
			}
		}
	}
}

func TestBus_KeyedWithoutWorkersIsSynchronous(t *testing.T) {
	bus := NewKeyed(Config{Name: "keyed-sync"}, func(v int) uint64 { return uint64(v) })
	defer bus.Close()

	var got []int
	bus.Subscribe(func(v int) { got = append(got, v) })
	bus.Publish(3)
	bus.Publish(1)

	if len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Errorf("got %v, want [3 1]", got)
	}
}
