package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxResults caps how many results the memory store keeps. The oldest
// result is dropped first. Non-positive values keep everything.
func WithMaxResults(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxResults = n
		}
	}
}
