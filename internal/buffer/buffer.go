package buffer

import "sort"

// Buffer defines a growable float buffer that fills up until it is drained.
type Buffer struct {
	values []float64
}

// NewBuffer creates a new buffer.
func NewBuffer(size int) *Buffer {
	return &Buffer{
		values: make([]float64, 0, size),
	}
}

// Push adds an element to the buffer.
func (b *Buffer) Push(x float64) {
	b.values = append(b.values, x)
}

// Len returns the current length of the buffer.
func (b *Buffer) Len() int {
	return len(b.values)
}

// Drain returns the buffer elements and resets the buffer.
func (b *Buffer) Drain() []float64 {
	vv := b.values
	b.values = make([]float64, 0, cap(vv))
	return vv
}

// Store keeps one buffer per channel name.
// It is not safe for concurrent use, callers are expected to guard it.
type Store struct {
	buffers map[string]*Buffer
}

// NewStore creates a new channel buffer store.
func NewStore() *Store {
	return &Store{
		buffers: make(map[string]*Buffer),
	}
}

// Append adds the value to the buffer of the given channel, creating it if it does not exist yet.
func (s *Store) Append(channel string, v float64) {
	b, ok := s.buffers[channel]
	if !ok {
		b = NewBuffer(0)
		s.buffers[channel] = b
	}
	b.Push(v)
}

// Ready returns the channels whose buffer holds exactly size elements, ordered by name.
func (s *Store) Ready(size int) []string {
	return s.filter(func(l int) bool {
		return l == size
	})
}

// Overflown returns the channels whose buffer holds more than size elements, ordered by name.
func (s *Store) Overflown(size int) []string {
	return s.filter(func(l int) bool {
		return l > size
	})
}

func (s *Store) filter(match func(l int) bool) []string {
	channels := make([]string, 0)
	for name, b := range s.buffers {
		if match(b.Len()) {
			channels = append(channels, name)
		}
	}
	sort.Strings(channels)
	return channels
}

// Drain returns the buffered values for the channel and resets its buffer.
func (s *Store) Drain(channel string) []float64 {
	b, ok := s.buffers[channel]
	if !ok {
		return []float64{}
	}
	return b.Drain()
}

// Len returns the buffer length for the given channel.
func (s *Store) Len(channel string) int {
	if b, ok := s.buffers[channel]; ok {
		return b.Len()
	}
	return 0
}

// Channels returns all known channel names, ordered by name.
func (s *Store) Channels() []string {
	return s.filter(func(int) bool {
		return true
	})
}
