package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/cadence/internal/domain/analysis"
	"github.com/okian/cadence/internal/domain/model"
	"github.com/okian/cadence/pkg/metrics"
)

// Sharded, in-memory Store implementation.
//
// Job IDs are hashed across a fixed set of shards so concurrent workers and
// readers contend on different locks. Each shard keeps insertion order so a
// full shard can evict its oldest finished record.

// Default store configuration constants.
const (
	defaultShardCount            = 16
	defaultCapacity              = 100000
	defaultMetricsUpdateInterval = 10 * time.Second
)

// shard holds one partition of the job records.
type shard struct {
	mu       sync.RWMutex
	records  map[string]*Record
	order    []string // insertion order, oldest first
	capacity int
}

// ShardedStore implements Store over hash-partitioned in-memory shards.
type ShardedStore struct {
	shards                []*shard
	shardCount            int
	capacity              int
	metricsUpdateInterval time.Duration

	count  atomic.Int64
	closed chan struct{}
	once   sync.Once
}

// NewShardedStore creates a store and starts its background metrics
// updater, which runs until ctx is canceled or Close is called.
func NewShardedStore(ctx context.Context, opts ...Option) *ShardedStore {
	s := &ShardedStore{
		shardCount:            defaultShardCount,
		capacity:              defaultCapacity,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		closed:                make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	perShard := s.capacity / s.shardCount
	if perShard < 1 {
		perShard = 1
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{
			records:  make(map[string]*Record),
			capacity: perShard,
		}
	}

	metrics.UpdateRepositoryShardCount(s.shardCount)
	go s.startMetricsUpdater(ctx)

	return s
}

// Close stops the background metrics updater.
func (s *ShardedStore) Close() error {
	s.once.Do(func() {
		close(s.closed)
	})
	return nil
}

func (s *ShardedStore) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id)) //nolint:errcheck // fnv never fails
	return s.shards[int(h.Sum32())%s.shardCount]
}

// Create registers a pending job.
func (s *ShardedStore) Create(ctx context.Context, job model.Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(job.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, exists := sh.records[job.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, job.ID)
	}

	if len(sh.records) >= sh.capacity {
		sh.evictOldest()
		s.count.Add(-1)
	}

	sh.records[job.ID] = &Record{
		Job:    job,
		Status: model.StatusPending,
	}
	sh.order = append(sh.order, job.ID)
	s.count.Add(1)
	return nil
}

// Complete attaches the finished result document to a job.
func (s *ShardedStore) Complete(ctx context.Context, id string, result analysis.Result) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, exists := sh.records[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	rec.Result = &result
	rec.Status = model.StatusCompleted
	rec.CompletedAt = time.Now()
	return nil
}

// Get returns a copy of the current record for a job.
func (s *ShardedStore) Get(ctx context.Context, id string) (Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, exists := sh.records[id]
	if !exists {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *rec, nil
}

// Delete removes a job record if present.
func (s *ShardedStore) Delete(ctx context.Context, id string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, exists := sh.records[id]; !exists {
		return
	}
	delete(sh.records, id)
	for i, ordered := range sh.order {
		if ordered == id {
			sh.order = append(sh.order[:i], sh.order[i+1:]...)
			break
		}
	}
	s.count.Add(-1)
}

// Count returns the number of jobs tracked across all shards.
func (s *ShardedStore) Count(ctx context.Context) int {
	return int(s.count.Load())
}

// evictOldest drops the oldest completed record, or the oldest record of
// any status when none has finished. Must be called with sh.mu held.
func (sh *shard) evictOldest() {
	if len(sh.order) == 0 {
		return
	}

	victim := 0
	for i, id := range sh.order {
		if rec, ok := sh.records[id]; ok && rec.Status == model.StatusCompleted {
			victim = i
			break
		}
	}

	delete(sh.records, sh.order[victim])
	sh.order = append(sh.order[:victim], sh.order[victim+1:]...)
}

// startMetricsUpdater publishes per-shard occupancy on a fixed interval.
func (s *ShardedStore) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(s.metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-ticker.C:
			s.updateMetrics()
		}
	}
}

func (s *ShardedStore) updateMetrics() {
	metrics.UpdateRepositoryRecordsTotal(int(s.count.Load()))
	for i, sh := range s.shards {
		sh.mu.RLock()
		n := len(sh.records)
		capacity := sh.capacity
		sh.mu.RUnlock()

		shardID := fmt.Sprintf("shard_%d", i)
		metrics.UpdateRepositoryRecordsPerShard(shardID, n)
		metrics.UpdateRepositoryShardUtilization(shardID, float64(n)/float64(capacity))
	}
}
