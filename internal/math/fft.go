package math

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/mjibson/go-dsp/fft"
)

// Direction defines the direction of the fourier transform.
type Direction int

const (
	// Forward computes X[k] = sum x[j] * exp(-2*pi*i*j*k/n).
	Forward Direction = 1
	// Inverse computes x[j] = sum X[k] * exp(+2*pi*i*j*k/n), without the 1/n scaling.
	Inverse Direction = -1
)

const (
	Radix2Kernel = "radix2"
	DSPKernel    = "dsp"
)

// Kernel runs a fourier transform in place on interleaved (real, imaginary) pairs.
type Kernel interface {
	Transform(data []float64, n int, dir Direction)
}

// KernelFor returns the kernel registered under the given name.
func KernelFor(name string) (Kernel, error) {
	switch strings.ToLower(name) {
	case "", Radix2Kernel:
		return Radix2{}, nil
	case DSPKernel:
		return DSP{}, nil
	}
	return nil, fmt.Errorf("unknown kernel '%s'", name)
}

// IsPowerOfTwo checks if n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func mustFit(data []float64, n int) {
	if !IsPowerOfTwo(n) {
		panic(fmt.Sprintf("fft size must be a power of two: %d", n))
	}
	if len(data) < 2*n {
		panic(fmt.Sprintf("fft data too short for %d complex samples: %d", n, len(data)))
	}
}

// Radix2 is the in-place radix-2 decimation-in-time transform.
type Radix2 struct{}

// Transform implements Kernel.
func (Radix2) Transform(data []float64, n int, dir Direction) {
	Transform(data, n, dir)
}

// Transform runs the radix-2 decimation-in-time fft in place over the first n complex samples of data.
// It panics if n is not a power of two or data holds less than 2n values.
func Transform(data []float64, n int, dir Direction) {
	mustFit(data, n)
	if n == 1 {
		return
	}

	// bit reversal permutation
	shift := uint(bits.UintSize - bits.TrailingZeros(uint(n)))
	for i := 0; i < n; i++ {
		j := int(bits.Reverse(uint(i)) >> shift)
		if j > i {
			data[2*i], data[2*j] = data[2*j], data[2*i]
			data[2*i+1], data[2*j+1] = data[2*j+1], data[2*i+1]
		}
	}

	sign := -1.0
	if dir == Inverse {
		sign = 1.0
	}

	// butterflies
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		theta := sign * 2 * math.Pi / float64(size)
		wpr, wpi := math.Cos(theta), math.Sin(theta)
		wr, wi := 1.0, 0.0
		for m := 0; m < half; m++ {
			for i := m; i < n; i += size {
				j := i + half
				tr := wr*data[2*j] - wi*data[2*j+1]
				ti := wr*data[2*j+1] + wi*data[2*j]
				data[2*j] = data[2*i] - tr
				data[2*j+1] = data[2*i+1] - ti
				data[2*i] += tr
				data[2*i+1] += ti
			}
			wr, wi = wr*wpr-wi*wpi, wr*wpi+wi*wpr
		}
	}
}

// DSP delegates the transform to go-dsp, keeping the in-place interleaved contract.
type DSP struct{}

// Transform implements Kernel.
func (DSP) Transform(data []float64, n int, dir Direction) {
	mustFit(data, n)
	xx := make([]complex128, n)
	for i := range xx {
		xx[i] = complex(data[2*i], data[2*i+1])
	}
	var yy []complex128
	scale := 1.0
	if dir == Inverse {
		yy = fft.IFFT(xx)
		// go-dsp scales the inverse by 1/n
		scale = float64(n)
	} else {
		yy = fft.FFT(xx)
	}
	for i, y := range yy {
		data[2*i] = real(y) * scale
		data[2*i+1] = imag(y) * scale
	}
}

// DFT is the naive O(n^2) discrete fourier transform of the interleaved data.
// It returns a new slice and leaves data untouched.
func DFT(data []float64, n int, dir Direction) []float64 {
	out := make([]float64, 2*n)
	sign := -1.0
	if dir == Inverse {
		sign = 1.0
	}
	for k := 0; k < n; k++ {
		var re, im float64
		for j := 0; j < n; j++ {
			theta := sign * 2 * math.Pi * float64(j*k%n) / float64(n)
			c, s := math.Cos(theta), math.Sin(theta)
			re += data[2*j]*c - data[2*j+1]*s
			im += data[2*j]*s + data[2*j+1]*c
		}
		out[2*k] = re
		out[2*k+1] = im
	}
	return out
}

// Interleave packs real samples into an interleaved complex array with zero imaginary parts.
func Interleave(xx []float64) []float64 {
	data := make([]float64, 2*len(xx))
	for i, x := range xx {
		data[2*i] = x
	}
	return data
}

// Magnitude returns the absolute value of the i-th complex sample.
func Magnitude(data []float64, i int) float64 {
	return math.Hypot(data[2*i], data[2*i+1])
}
