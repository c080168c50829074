package conversation

import (
	"context"
	"sync"
)

const mailboxShards = 32

type job struct {
	ctx context.Context
	in  Inbound
	ev  Event
}

// mailboxes serializes jobs per user. Each user with pending work gets one
// goroutine that drains its queue and exits once the queue is empty.
type mailboxes struct {
	size int
	run  func(job)

	mu     sync.RWMutex // guards closed against wg.Add
	closed bool
	wg     sync.WaitGroup
	shards [mailboxShards]mailboxShard
}

type mailboxShard struct {
	mu    sync.Mutex
	boxes map[int64]chan job
}

func newMailboxes(size int, run func(job)) *mailboxes {
	m := &mailboxes{size: size, run: run}
	for i := range m.shards {
		m.shards[i].boxes = make(map[int64]chan job)
	}
	return m
}

func (m *mailboxes) shard(userID int64) *mailboxShard {
	return &m.shards[uint64(userID)%mailboxShards]
}

// enqueue reports false when the mailboxes are closed or the user's queue is full.
func (m *mailboxes) enqueue(userID int64, j job) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false
	}

	sh := m.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	queue, ok := sh.boxes[userID]
	if !ok {
		queue = make(chan job, m.size)
		sh.boxes[userID] = queue
		m.wg.Add(1)
		go m.drain(sh, userID, queue)
	}
	select {
	case queue <- j:
		return true
	default:
		return false
	}
}

func (m *mailboxes) drain(sh *mailboxShard, userID int64, queue chan job) {
	defer m.wg.Done()
	for {
		select {
		case j := <-queue:
			m.run(j)
			continue
		default:
		}

		// Producers send under the shard lock, so an empty queue seen here stays empty.
		sh.mu.Lock()
		if len(queue) == 0 {
			delete(sh.boxes, userID)
			sh.mu.Unlock()
			return
		}
		sh.mu.Unlock()
	}
}

// pending returns the number of users with queued or running work.
func (m *mailboxes) pending() int {
	n := 0
	for i := range m.shards {
		sh := &m.shards[i]
		sh.mu.Lock()
		n += len(sh.boxes)
		sh.mu.Unlock()
	}
	return n
}

// close stops accepting jobs and waits for queued ones until ctx ends.
func (m *mailboxes) close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
