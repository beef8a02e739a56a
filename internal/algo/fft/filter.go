package fft

import (
	"fmt"
	"sync"
	"time"

	"github.com/drakos74/fft-filter/internal/buffer"
	coinmath "github.com/drakos74/fft-filter/internal/math"
	"github.com/drakos74/fft-filter/internal/metrics"
	"github.com/drakos74/fft-filter/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	Name = "fft"

	routePass    = "pass"
	routeConsume = "consume"

	// otherAsset is the metric label for every pass through reading.
	otherAsset = "other"
)

// Filter buffers the datapoints of the configured asset and emits a band summary for every full window.
// Ingest and Reconfigure are serialised on the same lock.
type Filter struct {
	lock   *sync.Mutex
	config Config
	kernel coinmath.Kernel
	store  *buffer.Store
}

// New creates a new filter for the given config.
func New(config Config) (*Filter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("could not create filter: %w", err)
	}
	kernel, err := coinmath.KernelFor(config.Kernel)
	if err != nil {
		return nil, fmt.Errorf("could not create filter: %w", err)
	}
	metrics.Observer.SetWindowSize(config.Samples)
	log.Info().Str("config", config.String()).Msg("created filter")
	return &Filter{
		lock:   new(sync.Mutex),
		config: config,
		kernel: kernel,
		store:  buffer.NewStore(),
	}, nil
}

// Config returns the current config.
func (f *Filter) Config() Config {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.config
}

// Buffered returns the number of buffered samples per channel.
func (f *Filter) Buffered() map[string]int {
	f.lock.Lock()
	defer f.lock.Unlock()
	buffered := make(map[string]int)
	for _, channel := range f.store.Channels() {
		buffered[channel] = f.store.Len(channel)
	}
	return buffered
}

// Reconfigure applies the category on top of the current config.
// If the resulting config is not valid, the current one stays in place and the error is returned.
// Buffered samples are kept as they are.
func (f *Filter) Reconfigure(category Category) (Config, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	config := f.config.Apply(category)
	if err := config.Validate(); err != nil {
		metrics.Observer.IncrementReconfigs("rejected")
		log.Error().Err(err).Str("config", config.String()).Msg("rejected reconfiguration")
		return f.config, fmt.Errorf("could not reconfigure filter: %w", err)
	}
	kernel, err := coinmath.KernelFor(config.Kernel)
	if err != nil {
		metrics.Observer.IncrementReconfigs("rejected")
		return f.config, fmt.Errorf("could not reconfigure filter: %w", err)
	}

	f.config = config
	f.kernel = kernel
	metrics.Observer.IncrementReconfigs("applied")
	metrics.Observer.SetWindowSize(config.Samples)
	log.Info().Str("config", config.String()).Msg("reconfigured filter")
	return config, nil
}

// Ingest routes the batch of readings.
// Readings of the configured asset are consumed into the channel buffers,
// all others are passed through in their original order.
// Summary readings are emitted right after the reading that completed their window.
func (f *Filter) Ingest(readings []*model.Reading) []*model.Reading {
	f.lock.Lock()
	defer f.lock.Unlock()

	out := make([]*model.Reading, 0, len(readings))
	for _, reading := range readings {
		if reading == nil {
			continue
		}
		if reading.Asset != f.config.Asset {
			metrics.Observer.IncrementReadings(otherAsset, routePass)
			out = append(out, reading)
			continue
		}
		metrics.Observer.IncrementReadings(reading.Asset, routeConsume)
		f.add(reading)
		out = f.process(reading.Time, out)
	}
	return out
}

func (f *Filter) add(reading *model.Reading) {
	for _, dp := range reading.Datapoints {
		v, ok := dp.Value.Numeric()
		if !ok {
			metrics.Observer.IncrementSkipped(dp.Value.Kind.String())
			continue
		}
		f.store.Append(dp.Name, v)
		metrics.Observer.IncrementSamples(dp.Name)
	}
}

// process transforms every channel that holds a full window.
func (f *Filter) process(t time.Time, out []*model.Reading) []*model.Reading {
	size := f.config.Samples
	// buffers longer than the window can only exist after it was reduced, they will never match again.
	for _, channel := range f.store.Overflown(size) {
		dropped := f.store.Drain(channel)
		metrics.Observer.IncrementDropped(channel)
		log.Warn().
			Str("channel", channel).
			Int("buffered", len(dropped)).
			Int("samples", size).
			Msg("dropped buffer exceeding window")
	}
	for _, channel := range f.store.Ready(size) {
		values := f.store.Drain(channel)
		summary, err := f.run(values)
		if err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("could not summarise window")
			continue
		}
		reading := summary.Reading(f.config.Asset, f.config.Peak)
		reading.ID = uuid.New().String()
		reading.Time = t
		metrics.Observer.IncrementWindows(channel)
		log.Debug().
			Str("channel", channel).
			Str("asset", reading.Asset).
			Int("bands", len(summary.Bands)).
			Int("peak", summary.Peak).
			Msg("emitted summary")
		out = append(out, reading)
	}
	return out
}

func (f *Filter) run(values []float64) (Summary, error) {
	start := time.Now()
	defer func() {
		metrics.Observer.ObserveTransform(f.config.Kernel, time.Since(start))
	}()
	n := len(values)
	data := coinmath.Interleave(values)
	f.kernel.Transform(data, n, coinmath.Forward)
	return Summarize(data, n/2, f.config.Bands, f.config.LowPass, f.config.HighPass)
}
