package fft

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	coinmath "github.com/drakos74/fft-filter/internal/math"
	"github.com/rs/zerolog/log"
)

const (
	AssetKey    = "asset"
	BandsKey    = "bands"
	SamplesKey  = "samples"
	LowPassKey  = "lowPass"
	HighPassKey = "highPass"
	PeakKey     = "peak"
	KernelKey   = "kernel"
)

// Keys lists all the config items.
var Keys = []string{AssetKey, BandsKey, SamplesKey, LowPassKey, HighPassKey, PeakKey, KernelKey}

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNoBins        = errors.New("no bins per band")
)

// Category is a snapshot of string valued configuration items.
// Missing items leave the current value untouched.
type Category map[string]string

// Config defines the configuration of the fft filter.
type Config struct {
	// Asset is the name of the asset whose readings are buffered and transformed.
	Asset string `json:"asset"`
	// Bands is the number of frequency bands in the summary.
	Bands int `json:"bands"`
	// Samples is the window length, it needs to be a power of two.
	Samples int `json:"samples"`
	// LowPass is the percentage of low frequency bins to discard.
	LowPass int `json:"lowPass"`
	// HighPass is the percentage of high frequency bins to discard.
	HighPass int `json:"highPass"`
	// Peak adds the peak frequency bin to the summary reading.
	Peak bool `json:"peak"`
	// Kernel names the transform implementation.
	Kernel string `json:"kernel"`
}

// DefaultConfig returns the config used for any item missing on start up.
func DefaultConfig() Config {
	return Config{
		Bands:   5,
		Samples: 64,
		Kernel:  coinmath.Radix2Kernel,
	}
}

func (c Config) String() string {
	return fmt.Sprintf("asset = %s , bands = %d , samples = %d , low-pass = %d , high-pass = %d , peak = %v , kernel = %s",
		c.Asset, c.Bands, c.Samples, c.LowPass, c.HighPass, c.Peak, c.Kernel)
}

// Bins returns the trimmed bin range [first, last) of the one-sided spectrum.
func (c Config) Bins() (first, last int) {
	return binRange(c.Samples/2, c.LowPass, c.HighPass)
}

func binRange(n, lowPass, highPass int) (first, last int) {
	first = lowPass * n / 100
	last = n - highPass*n/100
	return
}

// Width returns the number of bins averaged into each band.
func (c Config) Width() int {
	if c.Bands <= 0 {
		return 0
	}
	first, last := c.Bins()
	return (last - first) / c.Bands
}

// Validate checks that a window can be summarised with the config.
func (c Config) Validate() error {
	if c.Samples < 2 || !coinmath.IsPowerOfTwo(c.Samples) {
		return fmt.Errorf("samples must be a power of two greater than 1 '%d': %w", c.Samples, ErrInvalidConfig)
	}
	if c.Bands < 1 {
		return fmt.Errorf("bands must be at least 1 '%d': %w", c.Bands, ErrInvalidConfig)
	}
	if c.LowPass < 0 || c.LowPass > 100 {
		return fmt.Errorf("low pass must be a percentage '%d': %w", c.LowPass, ErrInvalidConfig)
	}
	if c.HighPass < 0 || c.HighPass > 100 {
		return fmt.Errorf("high pass must be a percentage '%d': %w", c.HighPass, ErrInvalidConfig)
	}
	if c.LowPass+c.HighPass >= 100 {
		return fmt.Errorf("low pass %d and high pass %d leave no bins: %w: %w", c.LowPass, c.HighPass, ErrInvalidConfig, ErrNoBins)
	}
	if c.Width() < 1 {
		first, last := c.Bins()
		return fmt.Errorf("%d bins [%d,%d) cannot fill %d bands: %w: %w", last-first, first, last, c.Bands, ErrInvalidConfig, ErrNoBins)
	}
	if _, err := coinmath.KernelFor(c.Kernel); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), ErrInvalidConfig)
	}
	return nil
}

// Apply overrides the config with the items present in the category.
// Malformed values are logged and the current value is kept.
func (c Config) Apply(category Category) Config {
	if asset, ok := category[AssetKey]; ok {
		c.Asset = asset
	}
	parseInt(category, BandsKey, &c.Bands)
	parseInt(category, SamplesKey, &c.Samples)
	parseInt(category, LowPassKey, &c.LowPass)
	parseInt(category, HighPassKey, &c.HighPass)
	if v, ok := category[PeakKey]; ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			log.Warn().Str("key", PeakKey).Str("value", v).Err(err).Msg("ignoring malformed config value")
		} else {
			c.Peak = b
		}
	}
	if kernel, ok := category[KernelKey]; ok {
		c.Kernel = strings.ToLower(strings.TrimSpace(kernel))
	}
	return c
}

func parseInt(category Category, key string, v *int) {
	s, ok := category[key]
	if !ok {
		return
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		log.Warn().Str("key", key).Str("value", s).Err(err).Msg("ignoring malformed config value")
		return
	}
	*v = i
}

// Category returns the config as a category snapshot.
func (c Config) Category() Category {
	return Category{
		AssetKey:    c.Asset,
		BandsKey:    strconv.Itoa(c.Bands),
		SamplesKey:  strconv.Itoa(c.Samples),
		LowPassKey:  strconv.Itoa(c.LowPass),
		HighPassKey: strconv.Itoa(c.HighPass),
		PeakKey:     strconv.FormatBool(c.Peak),
		KernelKey:   c.Kernel,
	}
}
