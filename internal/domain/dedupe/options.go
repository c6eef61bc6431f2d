package dedupe

// Option applies a configuration option to the in-memory Deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of request IDs kept in memory.
// maxSize > 0 bounds the deduper with oldest-first eviction; maxSize <= 0
// disables eviction entirely.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
