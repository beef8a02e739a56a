package processor

import (
	"fmt"

	"github.com/drakos74/fft-filter/internal/algo/fft"
	"github.com/drakos74/fft-filter/internal/api"
	"github.com/drakos74/fft-filter/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBatch is the max number of readings ingested in one cycle.
	DefaultBatch = 100
)

// Void passes all readings through untouched.
func Void(name string) api.Processor {
	return func(in <-chan *model.Reading, out chan<- *model.Reading) {
		defer func() {
			log.Info().Msg(Audit(name, "closing processor"))
			close(out)
		}()
		for reading := range in {
			out <- reading
		}
	}
}

// Ingester consumes a batch of readings and returns the readings to forward.
type Ingester interface {
	Ingest(readings []*model.Reading) []*model.Reading
}

// Batch groups the readings that are already waiting on the input into ingest cycles of up to max readings.
// It blocks only for the first reading of each cycle, so a slow stream is ingested one reading at a time.
func Batch(name string, ingester Ingester, max int) api.Processor {
	if max <= 0 {
		max = DefaultBatch
	}
	return func(in <-chan *model.Reading, out chan<- *model.Reading) {
		defer func() {
			log.Info().Msg(Audit(name, "closing processor"))
			close(out)
		}()
		batch := make([]*model.Reading, 0, max)
		for reading := range in {
			batch = append(batch[:0], reading)
			closed := false
		collect:
			for len(batch) < max {
				select {
				case next, ok := <-in:
					if !ok {
						closed = true
						break collect
					}
					batch = append(batch, next)
				default:
					break collect
				}
			}
			for _, r := range ingester.Ingest(batch) {
				out <- r
			}
			if closed {
				return
			}
		}
	}
}

// FFT creates the processor running the fft filter over the stream.
func FFT(filter *fft.Filter, max int) api.Processor {
	return Batch(fft.Name, filter, max)
}

// Audit prefixes the message with the processor name.
func Audit(name, msg string) string {
	return fmt.Sprintf("[%s] %s", name, msg)
}
