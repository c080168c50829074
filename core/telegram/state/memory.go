package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/tradebot/core/logger"
)

const shardCount = 32

type shard struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

type memoryStore struct {
	shards [shardCount]shard
}

// NewMemoryStore constructs the in-memory Store used by the bot.
func NewMemoryStore() Store {
	m := &memoryStore{}
	for i := range m.shards {
		m.shards[i].sessions = make(map[int64]Session)
	}
	return m
}

func (m *memoryStore) shardFor(userID int64) *shard {
	idx := uint64(userID) % shardCount
	return &m.shards[idx]
}

// Get returns a copy of the user's session if one exists.
func (m *memoryStore) Get(userID int64) (Session, bool) {
	sh := m.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	s, ok := sh.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return s.Clone(), true
}

// Put replaces the user's session. An idle session is the same as Remove.
func (m *memoryStore) Put(s Session) {
	if s.Step == StepIdle || s.Step == "" {
		m.Remove(s.UserID)
		return
	}
	sh := m.shardFor(s.UserID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.sessions[s.UserID] = s.Clone()
}

// Remove drops the user's session. Removing a missing session is a no-op.
func (m *memoryStore) Remove(userID int64) {
	sh := m.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.sessions, userID)
}

func (m *memoryStore) Len() int {
	total := 0
	for i := range m.shards {
		sh := &m.shards[i]
		sh.mu.RLock()
		total += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return total
}

func (m *memoryStore) Sweep(cutoff time.Time) int {
	removed := 0
	for i := range m.shards {
		sh := &m.shards[i]
		sh.mu.Lock()
		for id, s := range sh.sessions {
			if s.UpdatedAt.Before(cutoff) {
				delete(sh.sessions, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// RunJanitor sweeps sessions idle for longer than ttl until ctx is done.
// A non-positive ttl returns immediately.
func RunJanitor(ctx context.Context, store Store, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.Sweep(now.Add(-ttl)); n > 0 {
				logger.Info(ctx, "state", "session.swept",
					slog.String("status", "ok"),
					slog.Int("count", n),
					slog.Int("sessions", store.Len()),
				)
			}
		}
	}
}
