// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package eventbus provides a typed in-process publish/subscribe bus.
//
// A Bus delivers every published value to every subscriber. With zero
// workers delivery is synchronous on the publishing goroutine, in
// subscription order. With workers, each (subscriber, value) pair is queued
// to a fixed pool and subscribers must not assume any delivery order,
// unless the bus is keyed: a keyed bus gives each worker its own queue and
// routes every value by key, so values sharing a key are delivered one at
// a time, in publish and subscription order.
package eventbus

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/seawatch/internal/logging"
)

// Handler receives published values.
type Handler[T any] func(T)

// Config configures dispatch.
type Config struct {
	// Name labels log lines from this bus.
	Name string

	// Workers is the size of the dispatch pool. Zero dispatches synchronously.
	Workers int

	// QueueSize bounds pending deliveries when Workers > 0. Publish blocks
	// while the queue is full.
	QueueSize int
}

type delivery[T any] struct {
	handler Handler[T]
	value   T
}

// Bus is a typed publish/subscribe bus. The zero value is not usable; use New.
type Bus[T any] struct {
	name     string
	mu       sync.RWMutex
	handlers []Handler[T]

	key     func(T) uint64
	queues  []chan delivery[T]
	queueMu sync.RWMutex // guards sends on queues against Close
	pending sync.WaitGroup
	workers sync.WaitGroup
	closed  atomic.Bool

	published atomic.Int64
	panics    atomic.Int64
}

// New creates a bus.
func New[T any](cfg Config) *Bus[T] {
	return newBus[T](cfg, nil)
}

// NewKeyed creates a bus whose worker pool is sharded by key. Without
// workers it behaves like New.
func NewKeyed[T any](cfg Config, key func(T) uint64) *Bus[T] {
	return newBus(cfg, key)
}

func newBus[T any](cfg Config, key func(T) uint64) *Bus[T] {
	b := &Bus[T]{name: cfg.Name}
	if cfg.Workers <= 0 {
		return b
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = cfg.Workers * 64
	}
	if key == nil {
		q := make(chan delivery[T], size)
		b.queues = []chan delivery[T]{q}
		for i := 0; i < cfg.Workers; i++ {
			b.workers.Add(1)
			go b.work(q)
		}
		return b
	}

	b.key = key
	per := size / cfg.Workers
	if per < 1 {
		per = 1
	}
	b.queues = make([]chan delivery[T], cfg.Workers)
	for i := range b.queues {
		b.queues[i] = make(chan delivery[T], per)
		b.workers.Add(1)
		go b.work(b.queues[i])
	}
	return b
}

// Subscribe registers a handler for every subsequently published value.
func (b *Bus[T]) Subscribe(h Handler[T]) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Subscribers returns the number of registered handlers.
func (b *Bus[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// Publish delivers v to all subscribers. Publishing on a closed bus is a
// no-op.
func (b *Bus[T]) Publish(v T) {
	if b.closed.Load() {
		return
	}
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	b.published.Add(1)
	if b.queues == nil {
		for _, h := range handlers {
			b.dispatch(h, v)
		}
		return
	}

	b.queueMu.RLock()
	defer b.queueMu.RUnlock()
	if b.closed.Load() {
		return
	}
	q := b.queues[0]
	if b.key != nil {
		q = b.queues[b.key(v)%uint64(len(b.queues))]
	}
	for _, h := range handlers {
		b.pending.Add(1)
		q <- delivery[T]{handler: h, value: v}
	}
}

// Drain blocks until every queued delivery has been handled.
func (b *Bus[T]) Drain() {
	b.pending.Wait()
}

// Close drains the queue and stops the workers.
func (b *Bus[T]) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	if b.queues != nil {
		// Wait out publishers that passed the closed check before enqueuing.
		b.queueMu.Lock()
		b.queueMu.Unlock() //nolint:staticcheck // empty critical section is a barrier
		b.pending.Wait()
		for _, q := range b.queues {
			close(q)
		}
		b.workers.Wait()
	}
}

// Published returns the number of values published so far.
func (b *Bus[T]) Published() int64 {
	return b.published.Load()
}

// Panics returns the number of handler panics recovered.
func (b *Bus[T]) Panics() int64 {
	return b.panics.Load()
}

func (b *Bus[T]) work(q <-chan delivery[T]) {
	defer b.workers.Done()
	for d := range q {
		b.dispatch(d.handler, d.value)
		b.pending.Done()
	}
}

func (b *Bus[T]) dispatch(h Handler[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			logging.Error().
				Str("bus", b.name).
				Str("value", fmt.Sprintf("%T", v)).
				Interface("panic", r).
				Msg("subscriber panicked")
		}
	}()
	h(v)
}
