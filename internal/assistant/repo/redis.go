package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sunrise-assist/server/internal/assistant/model"
	errx "github.com/sunrise-assist/server/internal/core/error"
	logx "github.com/sunrise-assist/server/pkg/logger"
)

// RedisThreadRepository persists thread state in Redis: message history as a
// list of JSON-marshalled messages, carried context as a JSON string, and a
// marker key that keeps the thread identifier valid across resets. All keys
// share a TTL that is extended on touch.
type RedisThreadRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisThreadRepository(rdb redis.Cmdable, ttl time.Duration) *RedisThreadRepository {
	return &RedisThreadRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisThreadRepository) messagesKey(threadID string) string {
	return fmt.Sprintf("thread:%s:messages", threadID)
}

func (r *RedisThreadRepository) contextKey(threadID string) string {
	return fmt.Sprintf("thread:%s:context", threadID)
}

func (r *RedisThreadRepository) metaKey(threadID string) string {
	return fmt.Sprintf("thread:%s:meta", threadID)
}

// Create registers a fresh thread by writing its marker key.
func (r *RedisThreadRepository) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := r.rdb.Set(ctx, r.metaKey(id), "1", r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("thread_id", id).Msg("failed to register thread")
		return "", errx.WrapRedis(err)
	}
	return id, nil
}

// Exists reports whether the thread's marker key is present.
func (r *RedisThreadRepository) Exists(ctx context.Context, threadID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.metaKey(threadID)).Result()
	if err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to check thread existence")
		return false, errx.WrapRedis(err)
	}
	return n > 0, nil
}

// Reset drops the history and carried context but keeps the marker key, so
// the identifier stays valid for subsequent messages.
func (r *RedisThreadRepository) Reset(ctx context.Context, threadID string) error {
	ok, err := r.Exists(ctx, threadID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrThreadNotFound
	}
	if err := r.rdb.Del(ctx, r.messagesKey(threadID), r.contextKey(threadID)).Err(); err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to reset thread")
		return errx.WrapRedis(err)
	}
	return r.touch(ctx, threadID)
}

// AddMessage appends a message to the thread's history list.
func (r *RedisThreadRepository) AddMessage(ctx context.Context, threadID string, message *schema.Message) error {
	b, err := json.Marshal(message)
	if err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to marshal message")
		return fmt.Errorf("marshal message: %w", err)
	}
	key := r.messagesKey(threadID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push message to redis")
		return errx.WrapRedis(err)
	}
	return r.touch(ctx, threadID)
}

// LoadHistory retrieves the ordered message history for a thread.
func (r *RedisThreadRepository) LoadHistory(ctx context.Context, threadID string) (*model.ConversationHistory, error) {
	key := r.messagesKey(threadID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return &model.ConversationHistory{ThreadID: threadID, Messages: []*schema.Message{}}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load thread history from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("thread_id", threadID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, &m)
	}
	return &model.ConversationHistory{ThreadID: threadID, Messages: msgs}, nil
}

// Context returns the thread's carried context; a missing key yields the
// zero context.
func (r *RedisThreadRepository) Context(ctx context.Context, threadID string) (model.ThreadContext, error) {
	s, err := r.rdb.Get(ctx, r.contextKey(threadID)).Result()
	if err != nil {
		if err == redis.Nil {
			return model.ThreadContext{}, nil
		}
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to load thread context")
		return model.ThreadContext{}, errx.WrapRedis(err)
	}
	var tc model.ThreadContext
	if err := json.Unmarshal([]byte(s), &tc); err != nil {
		return model.ThreadContext{}, fmt.Errorf("unmarshal thread context: %w", err)
	}
	return tc, nil
}

// SetContext replaces the thread's carried context.
func (r *RedisThreadRepository) SetContext(ctx context.Context, threadID string, tc model.ThreadContext) error {
	b, err := json.Marshal(tc)
	if err != nil {
		return fmt.Errorf("marshal thread context: %w", err)
	}
	if err := r.rdb.Set(ctx, r.contextKey(threadID), b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to save thread context")
		return errx.WrapRedis(err)
	}
	return r.touch(ctx, threadID)
}

// touch extends the TTL on every key belonging to the thread.
func (r *RedisThreadRepository) touch(ctx context.Context, threadID string) error {
	if r.ttl <= 0 {
		return nil
	}
	for _, key := range []string{r.metaKey(threadID), r.messagesKey(threadID), r.contextKey(threadID)} {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			// Key may simply not exist yet (e.g. context before first write).
			logx.Debug().Str("key", key).Dur("ttl", r.ttl).Msg("no TTL set on absent key")
		}
	}
	return nil
}

var _ model.ThreadRepository = (*RedisThreadRepository)(nil)
