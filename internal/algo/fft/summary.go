package fft

import (
	"fmt"

	coinmath "github.com/drakos74/fft-filter/internal/math"
	"github.com/drakos74/fft-filter/internal/model"
	"gonum.org/v1/gonum/stat"
)

const (
	// Suffix is appended to the asset name for the summary readings.
	Suffix   = " FFT"
	PeakName = "Peak Frequency"
)

// Band is the averaged amplitude over a group of consecutive bins.
type Band struct {
	Label     string  `json:"label"`
	Amplitude float64 `json:"amplitude"`
}

// BandLabel returns the datapoint name for the i-th band.
func BandLabel(i int) string {
	return fmt.Sprintf("Band %02d", i)
}

// Summary is the compact view of a window spectrum.
type Summary struct {
	Bands []Band `json:"bands"`
	// Peak is the bin with the highest magnitude within the trimmed range.
	Peak int `json:"peak"`
}

// Summarize groups the bins of the one-sided spectrum into bands.
// n is the number of one-sided bins, spectrum holds at least n interleaved complex values.
// The low and high pass percentages trim the bin range before it is split into bands of equal width,
// any bins left over after the last full band are not part of the summary.
func Summarize(spectrum []float64, n, bands, lowPass, highPass int) (Summary, error) {
	if bands <= 0 {
		return Summary{}, fmt.Errorf("bands '%d': %w", bands, ErrNoBins)
	}
	first, last := binRange(n, lowPass, highPass)
	width := (last - first) / bands
	if width <= 0 {
		return Summary{}, fmt.Errorf("%d bins for %d bands: %w", last-first, bands, ErrNoBins)
	}
	if len(spectrum) < 2*last {
		return Summary{}, fmt.Errorf("spectrum holds %d bins, need %d", len(spectrum)/2, last)
	}

	summary := Summary{
		Bands: make([]Band, 0, bands),
	}
	var peak float64
	group := make([]float64, 0, width)
	for i := first; i < last; i++ {
		m := coinmath.Magnitude(spectrum, i)
		if m > peak {
			peak = m
			summary.Peak = i
		}
		if len(summary.Bands) == bands {
			// remainder bins still count for the peak
			continue
		}
		group = append(group, m)
		if len(group) == width {
			summary.Bands = append(summary.Bands, Band{
				Label:     BandLabel(len(summary.Bands)),
				Amplitude: stat.Mean(group, nil),
			})
			group = group[:0]
		}
	}
	return summary, nil
}

// Reading converts the summary into a reading for the given asset.
func (s Summary) Reading(asset string, peak bool) *model.Reading {
	reading := &model.Reading{
		Asset:      asset + Suffix,
		Datapoints: make([]model.Datapoint, 0, len(s.Bands)+1),
	}
	for _, band := range s.Bands {
		reading.Add(band.Label, model.FloatValue(band.Amplitude))
	}
	if peak {
		reading.Add(PeakName, model.IntValue(int64(s.Peak)))
	}
	return reading
}
