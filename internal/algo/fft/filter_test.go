package fft

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	coinmath "github.com/drakos74/fft-filter/internal/math"
	"github.com/drakos74/fft-filter/internal/metrics"
	"github.com/drakos74/fft-filter/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReading(asset string, i int, values map[string]model.Value) *model.Reading {
	r := model.NewReading(asset, time.Unix(int64(i), 0))
	// keep a stable datapoint order
	for _, name := range []string{"x", "y", "z", "label"} {
		if v, ok := values[name]; ok {
			r.Add(name, v)
		}
	}
	return r
}

func newFilter(t *testing.T, category Category) *Filter {
	f, err := New(DefaultConfig().Apply(category))
	require.NoError(t, err)
	return f
}

func TestFilter_Scenario(t *testing.T) {

	f := newFilter(t, Category{
		AssetKey:    "vib",
		SamplesKey:  "8",
		BandsKey:    "2",
		LowPassKey:  "0",
		HighPassKey: "0",
	})

	var out []*model.Reading
	for i, x := range []float64{1, 0, -1, 0, 1, 0, -1, 0} {
		out = append(out, f.Ingest([]*model.Reading{
			newReading("vib", i, map[string]model.Value{"x": model.FloatValue(x)}),
		})...)
	}

	require.Equal(t, 1, len(out))
	summary := out[0]
	assert.Equal(t, "vib FFT", summary.Asset)
	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, time.Unix(7, 0), summary.Time)
	require.Equal(t, 2, len(summary.Datapoints))

	low, _ := summary.Datapoints[0].Value.Numeric()
	high, _ := summary.Datapoints[1].Value.Numeric()
	assert.Equal(t, "Band 00", summary.Datapoints[0].Name)
	assert.Equal(t, "Band 01", summary.Datapoints[1].Name)
	// bin 2 carries the whole signal and belongs to the second band
	assert.InDelta(t, 0, low, 1e-9)
	assert.InDelta(t, 2, high, 1e-9)
	assert.Greater(t, high, low)

	_, hasPeak := summary.Get(PeakName)
	assert.False(t, hasPeak)
}

func TestFilter_Peak(t *testing.T) {

	f := newFilter(t, Category{
		AssetKey:   "vib",
		SamplesKey: "32",
		BandsKey:   "4",
		PeakKey:    "true",
		KernelKey:  coinmath.DSPKernel,
	})

	batch := make([]*model.Reading, 0)
	for i, x := range coinmath.Cosine(3, 6, 32) {
		batch = append(batch, newReading("vib", i, map[string]model.Value{"x": model.FloatValue(x)}))
	}
	out := f.Ingest(batch)

	require.Equal(t, 1, len(out))
	peak, ok := out[0].Get(PeakName)
	require.True(t, ok)
	assert.Equal(t, int64(6), peak.Int())
}

func TestFilter_WindowTrigger(t *testing.T) {

	samples := 16
	f := newFilter(t, Category{
		AssetKey:   "vib",
		SamplesKey: fmt.Sprintf("%d", samples),
		BandsKey:   "2",
	})

	counts := map[string]int{}
	emitted := 0
	for i := 0; i < 200; i++ {
		values := map[string]model.Value{
			"x": model.IntValue(int64(i)),
		}
		// y only every third reading, label is never numeric
		if i%3 == 0 {
			values["y"] = model.FloatValue(float64(i))
		}
		values["label"] = model.StringValue("on")
		out := f.Ingest([]*model.Reading{newReading("vib", i, values)})

		counts["x"]++
		if i%3 == 0 {
			counts["y"]++
		}
		expected := 0
		for channel, c := range counts {
			if c == samples {
				expected++
				counts[channel] = 0
			}
		}
		assert.Equal(t, expected, len(out), "%d", i)
		emitted += len(out)

		for channel, l := range f.Buffered() {
			assert.Less(t, l, samples, channel)
			assert.Equal(t, counts[channel], l, channel)
		}
	}
	assert.Equal(t, 200/samples+67/samples, emitted)
	_, hasLabel := f.Buffered()["label"]
	assert.False(t, hasLabel)
}

func TestFilter_PassThrough(t *testing.T) {

	f := newFilter(t, Category{
		AssetKey:   "vib",
		SamplesKey: "4",
		BandsKey:   "1",
	})

	batch := make([]*model.Reading, 0)
	for i := 0; i < 8; i++ {
		batch = append(batch, newReading("temp", i, map[string]model.Value{"x": model.IntValue(int64(i))}))
		batch = append(batch, newReading("vib", i, map[string]model.Value{"x": model.IntValue(int64(i))}))
		batch = append(batch, newReading("vib-2", i, map[string]model.Value{"y": model.IntValue(int64(i))}))
	}
	batch = append(batch, nil)

	out := f.Ingest(batch)
	// 16 pass through readings plus 2 summaries
	require.Equal(t, 18, len(out))

	passed := make([]*model.Reading, 0)
	for i, r := range out {
		if r.Asset == "vib FFT" {
			// summaries follow the reading that completed the window
			assert.Contains(t, []int{7, 16}, i)
			continue
		}
		assert.NotEqual(t, "vib", r.Asset)
		passed = append(passed, r)
	}
	j := 0
	for _, r := range batch {
		if r != nil && r.Asset != "vib" {
			// unchanged and in order
			assert.Same(t, r, passed[j])
			j++
		}
	}
	assert.Equal(t, 16, j)
}

func TestFilter_ReconfigureMidStream(t *testing.T) {

	f := newFilter(t, Category{
		AssetKey:   "vib",
		SamplesKey: "8",
		BandsKey:   "2",
	})

	for i := 0; i < 3; i++ {
		out := f.Ingest([]*model.Reading{newReading("vib", i, map[string]model.Value{"x": model.FloatValue(1)})})
		assert.Empty(t, out)
	}

	config, err := f.Reconfigure(Category{SamplesKey: "4", BandsKey: "1"})
	require.NoError(t, err)
	assert.Equal(t, 4, config.Samples)
	assert.Equal(t, "vib", config.Asset)
	// nothing gets truncated
	assert.Equal(t, 3, f.Buffered()["x"])

	out := f.Ingest([]*model.Reading{newReading("vib", 3, map[string]model.Value{"x": model.FloatValue(1)})})
	require.Equal(t, 1, len(out))
	// a constant window of 4 samples : bins [0,2) hold 4 and 0
	v, _ := out[0].Datapoints[0].Value.Numeric()
	assert.InDelta(t, 2, v, 1e-9)
	assert.Equal(t, 0, f.Buffered()["x"])
}

func TestFilter_ReconfigureShrinkBelowBuffer(t *testing.T) {

	f := newFilter(t, Category{
		AssetKey:   "vib",
		SamplesKey: "16",
		BandsKey:   "2",
	})

	for i := 0; i < 6; i++ {
		f.Ingest([]*model.Reading{newReading("vib", i, map[string]model.Value{"x": model.FloatValue(1)})})
	}

	_, err := f.Reconfigure(Category{SamplesKey: "4"})
	require.NoError(t, err)

	// the over-full buffer is dropped and x starts over
	out := f.Ingest([]*model.Reading{newReading("vib", 6, map[string]model.Value{"x": model.FloatValue(1)})})
	assert.Empty(t, out)
	assert.Equal(t, 0, f.Buffered()["x"])
}

func TestFilter_ReconfigureRejected(t *testing.T) {

	f := newFilter(t, Category{
		AssetKey:   "vib",
		SamplesKey: "8",
		BandsKey:   "2",
	})

	config, err := f.Reconfigure(Category{BandsKey: "9"})
	assert.True(t, errors.Is(err, ErrNoBins))
	assert.Equal(t, 2, config.Bands)
	assert.Equal(t, 2, f.Config().Bands)

	_, err = f.Reconfigure(Category{SamplesKey: "10"})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Equal(t, 8, f.Config().Samples)

	// malformed values are ignored, the rest is applied
	config, err = f.Reconfigure(Category{SamplesKey: "sixteen", AssetKey: "motor"})
	require.NoError(t, err)
	assert.Equal(t, 8, config.Samples)
	assert.Equal(t, "motor", f.Config().Asset)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Config{Asset: "vib", Samples: 8, Bands: 0})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestFilter_Concurrent(t *testing.T) {

	f := newFilter(t, Category{
		AssetKey:   "vib",
		SamplesKey: "8",
		BandsKey:   "2",
	})

	wg := new(sync.WaitGroup)
	emitted := make(chan int, 100)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			count := 0
			for i := 0; i < 64; i++ {
				out := f.Ingest([]*model.Reading{newReading("vib", i, map[string]model.Value{"x": model.FloatValue(float64(g))})})
				count += len(out)
			}
			emitted <- count
		}(g)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			_, err := f.Reconfigure(Category{PeakKey: fmt.Sprintf("%v", i%2 == 0)})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()
	close(emitted)

	total := 0
	for c := range emitted {
		total += c
	}
	// 256 samples on a single channel make exactly 32 windows
	assert.Equal(t, 32, total)
	assert.Equal(t, 0, f.Buffered()["x"])
}

func TestFilter_PassThroughMetrics(t *testing.T) {

	f := newFilter(t, Category{
		AssetKey:   "vib",
		SamplesKey: "8",
		BandsKey:   "2",
	})

	readings := metrics.Observer.Prometheus().Readings
	passed := testutil.ToFloat64(readings.WithLabelValues(otherAsset, routePass))
	series := testutil.CollectAndCount(readings)

	batch := make([]*model.Reading, 0)
	for i := 0; i < 10; i++ {
		batch = append(batch, newReading(fmt.Sprintf("asset-%d", i), i, map[string]model.Value{"x": model.IntValue(1)}))
	}
	f.Ingest(batch)

	assert.Equal(t, passed+10, testutil.ToFloat64(readings.WithLabelValues(otherAsset, routePass)))
	// all pass through assets share a single series
	assert.Equal(t, series, testutil.CollectAndCount(readings))
}
