// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"

	jobqueue "github.com/okian/cadence/internal/adapters/mq/queue"
	workerpool "github.com/okian/cadence/internal/adapters/mq/worker"
	repository "github.com/okian/cadence/internal/adapters/repository"
	"github.com/okian/cadence/internal/domain/analysis"
	"github.com/okian/cadence/internal/domain/audio"
	"github.com/okian/cadence/internal/domain/dedupe"
	"github.com/okian/cadence/internal/domain/model"
	"github.com/okian/cadence/pkg/logger"
	"github.com/okian/cadence/pkg/metrics"
)

// Service implements the API dependencies for the analysis system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	jobQueue   jobqueue.Queue
	engine     *analysis.Engine
	workerPool *workerpool.Pool

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	storeCapacity int

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStoreCapacity sets the number of job records retained in memory.
func WithStoreCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.storeCapacity = capacity
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEngine sets a custom analysis engine.
func WithEngine(engine *analysis.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2, // Default to 2x CPU cores
		queueSize:     10000,
		dedupeSize:    50000,
		storeCapacity: 100000,
		stopCh:        make(chan struct{}),
		logger:        nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analysis service...")

	// Initialize components
	s.store = repository.NewShardedStore(ctx,
		repository.WithCapacity(s.storeCapacity),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	if s.engine == nil {
		s.engine = analysis.NewEngine()
	}

	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s.engine, s.store)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping analysis service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	if s.store != nil {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "analysis service stopped")
}

// SeenAndRecord atomically checks if a request id was seen and records it
// if not. Returns true if the request was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordRequestDuplicate()
	}
	return seen
}

// Unrecord removes a request ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Analyze runs the full analysis synchronously.
func (s *Service) Analyze(ctx context.Context, clip audio.Clip, transcript string) analysis.Result {
	return s.engine.Analyze(ctx, clip, transcript)
}

// Submit registers a pending job and enqueues it for asynchronous
// processing. Returns false on backpressure.
func (s *Service) Submit(ctx context.Context, job model.Job) bool {
	if err := s.store.Create(ctx, job); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			// Deduper already admitted this ID; a stored record with the
			// same ID means eviction raced the deduper. Treat as seen.
			s.logger.Warn(ctx, "job id already tracked",
				logger.String("jobID", job.ID),
			)
			return true
		}
		metrics.RecordRepositoryError()
		s.logger.Error(ctx, "creating job record failed",
			logger.String("jobID", job.ID),
			logger.Error(err),
		)
		return false
	}

	if !s.jobQueue.Enqueue(ctx, job) {
		// Roll back the pending record so a retry can succeed.
		s.store.Delete(ctx, job.ID)
		s.logger.Warn(ctx, "job queue full, rejecting submission",
			logger.String("jobID", job.ID),
		)
		return false
	}

	metrics.UpdateQueueSize(s.jobQueue.Len(ctx))
	return true
}

// Job returns the stored record for a job id.
func (s *Service) Job(ctx context.Context, id string) (repository.Record, error) {
	return s.store.Get(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		totalJobs := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalJobs"] = totalJobs

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalJobs(totalJobs)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
