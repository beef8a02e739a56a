package file

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/drakos74/fft-filter/internal/model"
	"github.com/drakos74/fft-filter/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lines = `{"asset":"vib","time":"2021-05-01T10:00:00Z","datapoints":[{"name":"x","value":1}]}

not a reading
{"asset":"temp","time":"2021-05-01T10:00:01Z","datapoints":[{"name":"t","value":21.5},{"name":"unit","value":"C"}]}
`

func collect(t *testing.T, source *Source) []*model.Reading {
	readings, err := source.Readings(context.Background())
	require.NoError(t, err)
	rr := make([]*model.Reading, 0)
	for r := range readings {
		rr = append(rr, r)
	}
	return rr
}

func TestSource_Readings(t *testing.T) {

	rr := collect(t, NewSource("test", strings.NewReader(lines)))

	require.Equal(t, 2, len(rr))
	assert.Equal(t, "vib", rr[0].Asset)
	assert.Equal(t, "temp", rr[1].Asset)
	unit, ok := rr[1].Get("unit")
	assert.True(t, ok)
	assert.Equal(t, model.String, unit.Kind)
}

func TestSource_Cancel(t *testing.T) {

	ctx, cnl := context.WithCancel(context.Background())
	readings, err := NewSource("test", strings.NewReader(strings.Repeat(strings.Split(lines, "\n")[0]+"\n", 100))).Readings(ctx)
	require.NoError(t, err)

	<-readings
	cnl()

	select {
	case <-time.After(time.Second):
		t.Fatal("source did not stop")
	case <-drain(readings):
	}
}

func drain(readings <-chan *model.Reading) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range readings {
		}
		close(done)
	}()
	return done
}

func TestSink_RoundTrip(t *testing.T) {

	path := filepath.Join(t.TempDir(), "out", "readings.json")

	sink, err := CreateSink(path)
	require.NoError(t, err)

	now := time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := sink.Write(model.NewReading("vib FFT", now).Add("Band 00", model.FloatValue(float64(i))))
		require.NoError(t, err)
	}
	require.NoError(t, sink.Close())
	assert.True(t, errors.Is(sink.Write(model.NewReading("vib", now)), storage.ClosedErr))

	source, err := OpenSource(path)
	require.NoError(t, err)
	rr := collect(t, source)
	require.Equal(t, 5, len(rr))
	for i, r := range rr {
		v, ok := r.Get("Band 00")
		assert.True(t, ok)
		assert.Equal(t, model.Float, v.Kind)
		f, _ := v.Numeric()
		assert.Equal(t, float64(i), f)
		assert.True(t, now.Equal(r.Time))
	}
}

func TestOpenSource_Missing(t *testing.T) {
	_, err := OpenSource(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, storage.NotFoundErr))
}

func TestSink_Writer(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink("buffer", &buf)
	require.NoError(t, sink.Write(model.NewReading("vib", time.Unix(0, 0).UTC())))
	// nothing is written before the flush
	assert.Equal(t, 0, buf.Len())
	require.NoError(t, sink.Close())
	assert.Equal(t, `{"asset":"vib","time":"1970-01-01T00:00:00Z","datapoints":null}`+"\n", buf.String())
}

func TestDecode(t *testing.T) {

	_, err := decode([]byte("not a reading"))
	assert.True(t, errors.Is(err, storage.CouldNotLoadErr))

	reading, err := decode([]byte(strings.Split(lines, "\n")[0]))
	require.NoError(t, err)
	assert.Equal(t, "vib", reading.Asset)
}

func TestSource_Close(t *testing.T) {

	path := filepath.Join(t.TempDir(), "readings.json")
	sink, err := CreateSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	source, err := OpenSource(path)
	require.NoError(t, err)
	require.NoError(t, source.Close())
	// closing twice is a noop
	require.NoError(t, source.Close())

	_, err = source.Readings(context.Background())
	assert.True(t, errors.Is(err, storage.ClosedErr))
}
