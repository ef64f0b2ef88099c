// README: Session store backed by Redis (JSON value per conversation, TTL GC).
package dialogue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "dialogue:session:"

// RedisStore persists sessions as JSON values with a TTL, so abandoned
// conversations are garbage-collected by Redis instead of leaking.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

func sessionKey(conversationID string) string {
	return sessionKeyPrefix + conversationID
}

// Load returns ErrNotFound for absent sessions. A corrupt payload or
// an unknown persisted state resets that single conversation: the key
// is deleted and ErrNotFound returned.
func (s *RedisStore) Load(ctx context.Context, conversationID string) (*Session, error) {
	val, err := s.redis.Get(ctx, sessionKey(conversationID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		log.Printf("dialogue: corrupt session %s, resetting: %v", conversationID, err)
		_ = s.redis.Del(ctx, sessionKey(conversationID)).Err()
		return nil, ErrNotFound
	}
	if _, err := ParseState(string(sess.State)); err != nil {
		log.Printf("dialogue: session %s has unknown state %q, resetting", conversationID, sess.State)
		_ = s.redis.Del(ctx, sessionKey(conversationID)).Err()
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, sessionKey(sess.ConversationID), data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	return s.redis.Del(ctx, sessionKey(conversationID)).Err()
}
