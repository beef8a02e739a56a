package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drakos74/fft-filter/internal/model"
)

// Processor defines the processing model of input and output channels for readings.
// Each processor will trigger the next one, when pushing the reading to the output channel.
// A processor closes its output once its input is closed.
type Processor func(in <-chan *model.Reading, out chan<- *model.Reading)

// Source produces a stream of readings.
// The returned channel is closed when the source is exhausted or the context is cancelled.
type Source interface {
	Readings(ctx context.Context) (<-chan *model.Reading, error)
}

// Sink consumes the readings at the end of the pipeline.
type Sink interface {
	Write(reading *model.Reading) error
	Close() error
}

// Condition defines a boundary condition to stop execution based on the consumed readings.
type Condition func(reading *model.Reading, numberOfReadings int) bool

// Counter stops the execution once the limit of readings is reached.
func Counter(limit int) Condition {
	return func(reading *model.Reading, numberOfReadings int) bool {
		return numberOfReadings > 0 && numberOfReadings >= limit
	}
}

// NonStop never stops the execution.
func NonStop(reading *model.Reading, numberOfReadings int) bool {
	return false
}

// Block allows 2 processes to sync
type Block struct {
	// Action block.Signal <- api.Signal{}
	Action chan Signal
	// ReAction	<-block.ReAction
	ReAction chan Signal
}

func NewBlock() Block {
	return Block{
		Action:   make(chan Signal),
		ReAction: make(chan Signal),
	}
}

// Signal is a generic struct used to trigger actions on other processes.
type Signal struct {
	Name    string
	ID      string
	Content interface{}
	Time    time.Time
}

// NewSignal creates a new action with the given name.
func NewSignal(name string) *Signal {
	return &Signal{
		Name: name,
		Time: time.Now(),
		ID:   uuid.New().String(),
	}
}

// Create returns an immutable instance of the action
func (a *Signal) Create() Signal {
	return *a
}

// WithContent adds content to the action.
func (a *Signal) WithContent(s interface{}) *Signal {
	a.Content = s
	return a
}
