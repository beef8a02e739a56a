package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{"asset", "bands", "samples", "lowPass", "highPass", "peak"}

func write(t *testing.T, dir, content string) string {
	file := filepath.Join(dir, "filter.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestItems(t *testing.T) {

	file := write(t, t.TempDir(), `
filter:
  asset: vib
  samples: 128
  lowPass: 10
  peak: true
`)

	v, err := New(file, map[string]interface{}{
		"server.addr": ":6090",
	})
	require.NoError(t, err)

	items := Items(v, Section, keys...)
	assert.Equal(t, map[string]string{
		"asset":   "vib",
		"samples": "128",
		"lowPass": "10",
		"peak":    "true",
	}, items)
	assert.Equal(t, ":6090", v.GetString("server.addr"))
}

func TestItems_Env(t *testing.T) {

	file := write(t, t.TempDir(), `
filter:
  asset: vib
  bands: 4
`)
	t.Setenv("FFT_FILTER_BANDS", "8")

	v, err := New(file, nil)
	require.NoError(t, err)

	items := Items(v, Section, keys...)
	assert.Equal(t, "8", items["bands"])
	assert.Equal(t, "vib", items["asset"])
}

func TestNew_Missing(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {

	dir := t.TempDir()
	file := write(t, dir, `
filter:
  samples: 16
`)

	v, err := New(file, nil)
	require.NoError(t, err)

	changes := make(chan map[string]string, 10)
	Watch(v, Section, func(items map[string]string) {
		changes <- items
	}, keys...)

	write(t, dir, `
filter:
  samples: 32
`)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case items := <-changes:
			// the file might be picked up half-written
			if items["samples"] == "32" {
				return
			}
		case <-timeout:
			t.Fatal("no config change observed")
		}
	}
}
