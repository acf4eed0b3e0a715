package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"exam-grading-service/internal/app"
	"exam-grading-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// AnswerKeyCache caches answer keys in process with TTL to avoid repeated DB hits.
type AnswerKeyCache struct {
	loader app.AnswerKeyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[int64]cachedKey
	// epoch moves on every invalidation; loads started before it are not stored.
	epoch uint64
}

type cachedKey struct {
	key       domain.AnswerKey
	expiresAt time.Time
}

func NewAnswerKeyCache(loader app.AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedKey),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, paperID int64) (domain.AnswerKey, error) {
	if key, ok := c.lookup(paperID); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(paperID, 10), func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if key, ok := c.lookup(paperID); ok {
			return key, nil
		}

		c.mu.RLock()
		epoch := c.epoch
		c.mu.RUnlock()

		key, err := c.loader.LoadAnswerKey(ctx, paperID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.ttl > 0 && c.epoch == epoch {
			c.cache[paperID] = cachedKey{key: key, expiresAt: c.clock().Add(c.ttlWithJitterLocked())}
		}
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return copyKey(result.(domain.AnswerKey)), nil
}

// Invalidate drops the cached key so the next read goes to the loader.
func (c *AnswerKeyCache) Invalidate(_ context.Context, paperID int64) error {
	c.mu.Lock()
	delete(c.cache, paperID)
	c.epoch++
	c.mu.Unlock()
	c.sf.Forget(strconv.FormatInt(paperID, 10))
	return nil
}

func (c *AnswerKeyCache) lookup(paperID int64) (domain.AnswerKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[paperID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return copyKey(entry.key), true
}

// ttlWithJitterLocked adds up to 10% jitter to spread expirations. Callers hold mu.
func (c *AnswerKeyCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func copyKey(key domain.AnswerKey) domain.AnswerKey {
	out := make(domain.AnswerKey, len(key))
	for q, o := range key {
		out[q] = o
	}
	return out
}

// StaticAnswerKeyLoader is a loader backed by a map (useful for tests/demos).
// A nil entry stands for a paper without an uploaded key.
type StaticAnswerKeyLoader struct {
	mu   sync.RWMutex
	keys map[int64]domain.AnswerKey
}

func NewStaticAnswerKeyLoader(keys map[int64]domain.AnswerKey) *StaticAnswerKeyLoader {
	return &StaticAnswerKeyLoader{keys: keys}
}

func (l *StaticAnswerKeyLoader) LoadAnswerKey(_ context.Context, paperID int64) (domain.AnswerKey, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	key, ok := l.keys[paperID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyKey(key), nil
}

// Set replaces the key stored for paperID.
func (l *StaticAnswerKeyLoader) Set(paperID int64, key domain.AnswerKey) {
	l.mu.Lock()
	l.keys[paperID] = key
	l.mu.Unlock()
}
