package repository

import "time"

// Option applies a configuration option to the ShardedStore.
type Option func(*ShardedStore)

// WithShardCount sets the number of hash partitions.
func WithShardCount(count int) Option {
	return func(s *ShardedStore) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithCapacity sets the total number of job records retained before the
// oldest finished records are evicted.
func WithCapacity(capacity int) Option {
	return func(s *ShardedStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *ShardedStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
