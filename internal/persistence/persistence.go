// Package persistence stores finished hands and agent profile snapshots
// off the game path. Tables hand records to a Sink, which queues them
// without blocking and writes them from its own goroutine. When the queue
// is full records are dropped and counted.
package persistence

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/game"
)

// DefaultQueueSize is used when NewSink is given a non-positive size.
const DefaultQueueSize = 256

// HandRecord is a finished hand at a table.
type HandRecord struct {
	TableID string       `json:"table_id"`
	Hand    game.Summary `json:"hand"`
}

// Store writes records durably. The Sink calls it from a single goroutine.
type Store interface {
	SaveHand(HandRecord) error
	SaveProfile(agent.Snapshot) error
}

// Stats counts what happened to submitted records.
type Stats struct {
	Written uint64 `json:"written"`
	Dropped uint64 `json:"dropped"`
	Failed  uint64 `json:"failed"`
}

type record struct {
	hand    *HandRecord
	profile *agent.Snapshot
}

func (r record) kind() string {
	if r.hand != nil {
		return "hand"
	}
	return "profile"
}

// Sink is an asynchronous, lossy queue in front of a Store.
type Sink struct {
	store   Store
	queue   chan record
	logger  *log.Logger
	written atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewSink returns a sink writing to store. Call Run to start writing.
func NewSink(store Store, size int, logger *log.Logger) *Sink {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Sink{
		store:  store,
		queue:  make(chan record, size),
		logger: logger.WithPrefix("persistence"),
	}
}

// RecordHand queues a hand. It reports false if the record was dropped.
func (s *Sink) RecordHand(r HandRecord) bool {
	return s.enqueue(record{hand: &r})
}

// RecordProfile queues a profile snapshot.
func (s *Sink) RecordProfile(snap agent.Snapshot) bool {
	return s.enqueue(record{profile: &snap})
}

func (s *Sink) enqueue(r record) bool {
	select {
	case s.queue <- r:
		return true
	default:
		s.dropped.Add(1)
		s.logger.Warn("queue full, dropping record", "kind", r.kind())
		return false
	}
}

// Run writes queued records until ctx is cancelled, then flushes whatever
// is already queued.
func (s *Sink) Run(ctx context.Context) error {
	for {
		select {
		case r := <-s.queue:
			s.write(r)
		case <-ctx.Done():
			s.flush()
			return nil
		}
	}
}

func (s *Sink) flush() {
	for {
		select {
		case r := <-s.queue:
			s.write(r)
		default:
			return
		}
	}
}

func (s *Sink) write(r record) {
	var err error
	if r.hand != nil {
		err = s.store.SaveHand(*r.hand)
	} else {
		err = s.store.SaveProfile(*r.profile)
	}
	if err != nil {
		s.failed.Add(1)
		s.logger.Error("write failed", "kind", r.kind(), "error", err)
		return
	}
	s.written.Add(1)
}

// Stats returns the counters so far.
func (s *Sink) Stats() Stats {
	return Stats{
		Written: s.written.Load(),
		Dropped: s.dropped.Load(),
		Failed:  s.failed.Load(),
	}
}
