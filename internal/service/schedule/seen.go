package schedule

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/recurrence"
)

// SeenSet remembers which ranges a session already expanded. It only saves
// work: losing an entry means the range is expanded again, which is harmless.
type SeenSet interface {
	// Mark records key for session and reports whether it was not seen before.
	Mark(ctx context.Context, session, key string) (bool, error)
	// Forget drops key so the next view of the range expands it again.
	Forget(ctx context.Context, session, key string) error
}

// MemorySeenSet keeps entries for the lifetime of one process.
type MemorySeenSet struct {
	mu   sync.Mutex
	seen map[string]map[string]struct{}
}

func NewMemorySeenSet() *MemorySeenSet {
	return &MemorySeenSet{seen: make(map[string]map[string]struct{})}
}

func (m *MemorySeenSet) Mark(_ context.Context, session, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys, ok := m.seen[session]
	if !ok {
		keys = make(map[string]struct{})
		m.seen[session] = keys
	}
	if _, ok := keys[key]; ok {
		return false, nil
	}
	keys[key] = struct{}{}
	return true, nil
}

func (m *MemorySeenSet) Forget(_ context.Context, session, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen[session], key)
	return nil
}

// RedisSeenSet stores one Redis set per session that expires with the session.
type RedisSeenSet struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSeenSet(rdb *redis.Client, ttl time.Duration) *RedisSeenSet {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSeenSet{rdb: rdb, ttl: ttl}
}

func seenKey(session string) string {
	return "schedule:seen:" + session
}

func (r *RedisSeenSet) Mark(ctx context.Context, session, key string) (bool, error) {
	k := seenKey(session)
	pipe := r.rdb.TxPipeline()
	added := pipe.SAdd(ctx, k, key)
	pipe.Expire(ctx, k, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("mark seen range: %w", err)
	}
	return added.Val() == 1, nil
}

func (r *RedisSeenSet) Forget(ctx context.Context, session, key string) error {
	if err := r.rdb.SRem(ctx, seenKey(session), key).Err(); err != nil {
		return fmt.Errorf("forget seen range: %w", err)
	}
	return nil
}

// rangeKey names rng for owner at the current revision of the owner's
// recurring parents. Adding, editing or ending a parent changes the key, so
// the next view of an already seen range expands it again.
func rangeKey(owner uuid.UUID, rng recurrence.Range, parents []model.Job) string {
	sorted := append([]model.Job(nil), parents...)
	slices.SortFunc(sorted, func(a, b model.Job) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	h := xxhash.New()
	for _, p := range sorted {
		end := ""
		if p.RecurrenceEndDate != nil {
			end = p.RecurrenceEndDate.String()
		}
		fmt.Fprintf(h, "%s|%d|%s|%s|%s\n", p.ID, p.UpdatedAt.UnixNano(), p.RecurrenceRule, p.Date, end)
	}
	return owner.String() + ":" + rng.Key() + ":" + strconv.FormatUint(h.Sum64(), 36)
}
