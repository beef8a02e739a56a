package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/drakos74/fft-filter/internal/model"
)

// MemoryStorage keeps readings in memory.
// It can replay them as a source and collect them as a sink.
type MemoryStorage struct {
	lock     *sync.Mutex
	readings []*model.Reading
	closed   bool
	err      error
}

func NewMemoryStorage(readings ...*model.Reading) *MemoryStorage {
	return &MemoryStorage{
		lock:     new(sync.Mutex),
		readings: readings,
	}
}

// WithError makes every write fail with the given error.
func (m *MemoryStorage) WithError(err error) *MemoryStorage {
	m.err = err
	return m
}

// Readings emits the stored readings in order.
func (m *MemoryStorage) Readings(ctx context.Context) (<-chan *model.Reading, error) {
	readings := m.All()

	out := make(chan *model.Reading)
	go func() {
		defer close(out)
		for _, r := range readings {
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (m *MemoryStorage) Write(reading *model.Reading) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.closed {
		return fmt.Errorf("memory storage: %w", ClosedErr)
	}
	if m.err != nil {
		return m.err
	}
	m.readings = append(m.readings, reading)
	return nil
}

func (m *MemoryStorage) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.closed = true
	return nil
}

// Closed returns true if the storage was closed as a sink.
func (m *MemoryStorage) Closed() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.closed
}

// All returns a copy of the stored readings.
func (m *MemoryStorage) All() []*model.Reading {
	m.lock.Lock()
	defer m.lock.Unlock()
	readings := make([]*model.Reading, len(m.readings))
	copy(readings, m.readings)
	return readings
}
