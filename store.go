package main

// Default geometry: 4096 chunks of 8190 samples, a bit over 33M entries.
// Chunks are sized so one allocation stays near 16K.
const (
	defaultChunkCap  = 8190
	defaultMaxChunks = 4096
)

// chunk is a fixed-capacity block of samples. Every chunk except the
// store's last one is full.
type chunk struct {
	used  int
	times []uint16
}

// Store accumulates latency samples, in microseconds, for the life of
// the process. Chunks are allocated lazily one at a time and never
// freed. Once the last chunk of a full table fills, further samples
// are dropped without telling the caller; bounding memory matters more
// than keeping every sample.
//
// Samples are stored as 16-bit values: delays of 65536us or more wrap
// modulo 65536. Memory density was chosen over range and the wrap is
// kept deliberately (see the truncation test).
//
// Store is not safe for concurrent use. The ingest loop is its only
// owner.
type Store struct {
	chunkCap  int
	maxChunks int
	chunks    []*chunk
	dropped   int
}

// NewStore returns an empty store with the default geometry.
func NewStore() *Store {
	return newStoreGeometry(defaultChunkCap, defaultMaxChunks)
}

// newStoreGeometry exists so tests can use toy chunk sizes.
func newStoreGeometry(chunkCap, maxChunks int) *Store {
	return &Store{chunkCap: chunkCap, maxChunks: maxChunks}
}

// Append records one latency sample. delayMicros is truncated to 16
// bits. When the store is saturated the sample is silently discarded.
func (s *Store) Append(delayMicros int64) {
	if len(s.chunks) == 0 || s.chunks[len(s.chunks)-1].used == s.chunkCap {
		if len(s.chunks) == s.maxChunks {
			s.dropped++
			return
		}
		s.chunks = append(s.chunks, &chunk{times: make([]uint16, s.chunkCap)})
	}
	c := s.chunks[len(s.chunks)-1]
	c.times[c.used] = uint16(delayMicros)
	c.used++
}

// Count returns the total number of stored samples. It walks the chunk
// table; appends are frequent, counting is not, so nothing is cached.
func (s *Store) Count() int {
	n := 0
	for _, c := range s.chunks {
		n += c.used
	}
	return n
}

// Dropped returns how many samples were discarded after saturation.
func (s *Store) Dropped() int {
	return s.dropped
}
