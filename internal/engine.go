package filter

import (
	"context"
	"fmt"

	"github.com/drakos74/fft-filter/internal/api"
	"github.com/drakos74/fft-filter/internal/model"
	"github.com/rs/zerolog/log"
)

const logEvery = 10000

// Engine runs a reading source through a chain of processors into a sink.
type Engine struct {
	source     api.Source
	sink       api.Sink
	processors []api.Processor
	autoStop   api.Condition
	count      map[string]int64
}

// NewEngine creates a new Engine.
func NewEngine(source api.Source, sink api.Sink) *Engine {
	return &Engine{
		source:     source,
		sink:       sink,
		processors: make([]api.Processor, 0),
		autoStop:   api.NonStop,
		count:      make(map[string]int64),
	}
}

// AddProcessor adds a processor func to the Engine.
func (e *Engine) AddProcessor(processor api.Processor) *Engine {
	e.processors = append(e.processors, processor)
	return e
}

// WithStop sets the condition for the engine to stop consuming the source.
func (e *Engine) WithStop(condition api.Condition) *Engine {
	e.autoStop = condition
	return e
}

// Run blocks until the source is exhausted, the stop condition is met or the context is cancelled.
// All readings that entered the pipeline are written to the sink before it returns.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cnl := context.WithCancel(ctx)
	defer cnl()

	source, err := e.source.Readings(ctx)
	if err != nil {
		return fmt.Errorf("could not start source: %w", err)
	}

	processors := append([]api.Processor{e.first(cnl)}, e.processors...)
	// stitch the pipeline together
	for _, process := range processors {
		output := make(chan *model.Reading)
		go process(source, output)
		source = output
	}

	log.Info().Int("processors", len(processors)-1).Msg("engine started")

	var sinkErr error
	written := 0
	for reading := range source {
		if err := e.sink.Write(reading); err != nil {
			log.Error().Err(err).Str("asset", reading.Asset).Msg("could not write reading")
			if sinkErr == nil {
				sinkErr = err
			}
			continue
		}
		written++
	}

	log.Info().Int("written", written).Msg("engine stopped")

	if err := e.sink.Close(); err != nil && sinkErr == nil {
		sinkErr = err
	}
	if sinkErr != nil {
		return fmt.Errorf("could not complete pipeline: %w", sinkErr)
	}
	return nil
}

func (e *Engine) first(stop context.CancelFunc) api.Processor {
	return func(in <-chan *model.Reading, out chan<- *model.Reading) {
		defer func() {
			close(out)
		}()
		total := 0
		// input processor
		for reading := range in {
			if reading == nil {
				log.Warn().Msg("main processor channel closed: nil reading received")
				stop()
				return
			}
			c := e.count[reading.Asset] + 1
			if c%logEvery == 0 {
				log.Info().
					Str("reading", reading.ID).
					Time("reading-time", reading.Time).
					Str("asset", reading.Asset).
					Int64("count", c).
					Msg("processed readings")
			}
			e.count[reading.Asset] = c
			total++
			// pass over to the next processor
			out <- reading
			if e.autoStop(reading, total) {
				log.Info().Int("readings", total).Msg("stopping engine")
				stop()
				return
			}
		}
	}
}

// Count returns the number of readings that entered the pipeline for the asset.
// It is only meaningful after Run returned.
func (e *Engine) Count(asset string) int64 {
	return e.count[asset]
}
