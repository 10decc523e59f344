package repo

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/sunrise-assist/server/internal/assistant/model"
	logx "github.com/sunrise-assist/server/pkg/logger"
)

type threadState struct {
	messages []*schema.Message
	tc       model.ThreadContext
	touched  time.Time
}

// MemoryThreadRepository keeps thread state in process memory. Idle threads
// are evicted after the TTL so the map cannot grow without bound.
type MemoryThreadRepository struct {
	mu      sync.RWMutex
	threads map[string]*threadState
	ttl     time.Duration
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryThreadRepository creates the store and starts the eviction
// sweeper. A non-positive ttl disables eviction.
func NewMemoryThreadRepository(ttl time.Duration) *MemoryThreadRepository {
	r := &MemoryThreadRepository{
		threads: make(map[string]*threadState),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	if ttl > 0 {
		go r.sweep()
	}
	return r
}

// Close stops the eviction sweeper.
func (r *MemoryThreadRepository) Close() {
	r.once.Do(func() { close(r.stop) })
}

func (r *MemoryThreadRepository) sweep() {
	interval := r.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.evictExpired(time.Now())
		}
	}
}

func (r *MemoryThreadRepository) evictExpired(now time.Time) {
	cutoff := now.Add(-r.ttl)
	r.mu.Lock()
	for id, st := range r.threads {
		if st.touched.Before(cutoff) {
			delete(r.threads, id)
			logx.Debug().Str("thread_id", id).Msg("evicted idle thread")
		}
	}
	r.mu.Unlock()
}

// Create registers a fresh empty thread under a random identifier.
func (r *MemoryThreadRepository) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	r.mu.Lock()
	r.threads[id] = &threadState{touched: time.Now()}
	r.mu.Unlock()
	return id, nil
}

// Exists reports whether the thread identifier is known.
func (r *MemoryThreadRepository) Exists(ctx context.Context, threadID string) (bool, error) {
	r.mu.RLock()
	_, ok := r.threads[threadID]
	r.mu.RUnlock()
	return ok, nil
}

// Reset empties the thread's state while keeping the identifier valid.
func (r *MemoryThreadRepository) Reset(ctx context.Context, threadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.threads[threadID]; !ok {
		return model.ErrThreadNotFound
	}
	r.threads[threadID] = &threadState{touched: time.Now()}
	return nil
}

// AddMessage appends a message to the thread's history.
func (r *MemoryThreadRepository) AddMessage(ctx context.Context, threadID string, message *schema.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.threads[threadID]
	if !ok {
		return model.ErrThreadNotFound
	}
	st.messages = append(st.messages, message)
	st.touched = time.Now()
	return nil
}

// LoadHistory returns a copy of the thread's ordered message history.
func (r *MemoryThreadRepository) LoadHistory(ctx context.Context, threadID string) (*model.ConversationHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.threads[threadID]
	if !ok {
		return nil, model.ErrThreadNotFound
	}
	msgs := make([]*schema.Message, len(st.messages))
	copy(msgs, st.messages)
	return &model.ConversationHistory{ThreadID: threadID, Messages: msgs}, nil
}

// Context returns the thread's carried context.
func (r *MemoryThreadRepository) Context(ctx context.Context, threadID string) (model.ThreadContext, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.threads[threadID]
	if !ok {
		return model.ThreadContext{}, model.ErrThreadNotFound
	}
	return st.tc, nil
}

// SetContext replaces the thread's carried context.
func (r *MemoryThreadRepository) SetContext(ctx context.Context, threadID string, tc model.ThreadContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.threads[threadID]
	if !ok {
		return model.ErrThreadNotFound
	}
	st.tc = tc
	st.touched = time.Now()
	return nil
}

var _ model.ThreadRepository = (*MemoryThreadRepository)(nil)
