package redis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"exam-grading-service/internal/app"
	"exam-grading-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// emptyField marks a cached paper that has no answer key yet.
const emptyField = "_empty"

var errStaleLoad = errors.New("answer key changed during load")

// AnswerKeyCache caches answer keys in Redis (hash per paper) and falls back to a loader on cache miss.
// Entries are stored as: HSET paper:{paperID}:answer_key {questionNumber} {option letter}
type AnswerKeyCache struct {
	client *redis.Client
	loader app.AnswerKeyLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, loader app.AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, paperID int64) (domain.AnswerKey, error) {
	hashKey := c.hashKey(paperID)

	if key, ok := c.fromCache(ctx, hashKey); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(hashKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if key, ok := c.fromCache(ctx, hashKey); ok {
			return key, nil
		}

		// Read the version before loading; Invalidate bumps it, so a load that
		// raced an invalidation never writes back.
		version, verr := c.client.Get(ctx, c.versionKey(paperID)).Int64()
		if verr != nil && !errors.Is(verr, redis.Nil) {
			version = -1
		}

		key, err := c.loader.LoadAnswerKey(ctx, paperID)
		if err != nil {
			return nil, err
		}
		if version >= 0 {
			// A failed or skipped write only costs another load.
			_ = c.store(ctx, paperID, version, key)
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(domain.AnswerKey), nil
}

// store writes key into the hash only while the paper's version still equals version.
func (c *AnswerKeyCache) store(ctx context.Context, paperID, version int64, key domain.AnswerKey) error {
	hashKey, verKey := c.hashKey(paperID), c.versionKey(paperID)
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, hashKey)
			if len(key) == 0 {
				pipe.HSet(ctx, hashKey, emptyField, "1")
			} else {
				fields := make(map[string]interface{}, len(key))
				for q, o := range key {
					fields[strconv.Itoa(q)] = o.String()
				}
				pipe.HSet(ctx, hashKey, fields)
			}
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, hashKey, ttl)
			}
			return nil
		})
		return err
	}, verKey)
}

// Invalidate bumps the paper's version and deletes the cached hash.
func (c *AnswerKeyCache) Invalidate(ctx context.Context, paperID int64) error {
	hashKey := c.hashKey(paperID)
	c.sf.Forget(hashKey)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, c.versionKey(paperID))
	pipe.Del(ctx, hashKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate answer key cache: %w", err)
	}
	return nil
}

func (c *AnswerKeyCache) fromCache(ctx context.Context, hashKey string) (domain.AnswerKey, bool) {
	fields, err := c.client.HGetAll(ctx, hashKey).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	key, err := buildKeyFromCache(fields)
	if err != nil {
		return nil, false
	}
	return key, true
}

func (c *AnswerKeyCache) hashKey(paperID int64) string {
	return "paper:" + strconv.FormatInt(paperID, 10) + ":answer_key"
}

func (c *AnswerKeyCache) versionKey(paperID int64) string {
	return c.hashKey(paperID) + ":v"
}

func buildKeyFromCache(fields map[string]string) (domain.AnswerKey, error) {
	key := make(domain.AnswerKey, len(fields))
	for field, letter := range fields {
		if field == emptyField {
			continue
		}
		q, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("cached question %q: %w", field, err)
		}
		opt, err := domain.ParseOption(letter)
		if err != nil {
			return nil, fmt.Errorf("cached option for question %d: %w", q, err)
		}
		key[q] = opt
	}
	return key, nil
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// NewClient builds a go-redis client.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
