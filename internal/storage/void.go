package storage

import (
	"fmt"
	"sync/atomic"

	"github.com/drakos74/fft-filter/internal/model"
)

// Void is the output name for discarding all readings.
const Void = "void"

// VoidSink is a noop sink, it only counts what it is given.
type VoidSink struct {
	count  int64
	closed int32
}

// NewVoidSink creates a new noop sink
func NewVoidSink() *VoidSink {
	return &VoidSink{}
}

func (v *VoidSink) Write(reading *model.Reading) error {
	if atomic.LoadInt32(&v.closed) == 1 {
		return fmt.Errorf("void sink: %w", ClosedErr)
	}
	atomic.AddInt64(&v.count, 1)
	return nil
}

func (v *VoidSink) Close() error {
	atomic.StoreInt32(&v.closed, 1)
	return nil
}

// Count returns the number of discarded readings.
func (v *VoidSink) Count() int64 {
	return atomic.LoadInt64(&v.count)
}
