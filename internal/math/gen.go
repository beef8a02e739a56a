package math

import "math"

// Sine generates a sinusoid completing k cycles over n samples.
func Sine(amplitude float64, k int, n int) []float64 {
	xx := make([]float64, n)
	for i := range xx {
		xx[i] = amplitude * math.Sin(2*math.Pi*float64(k*i)/float64(n))
	}
	return xx
}

// Cosine generates a cosine completing k cycles over n samples.
func Cosine(amplitude float64, k int, n int) []float64 {
	xx := make([]float64, n)
	for i := range xx {
		xx[i] = amplitude * math.Cos(2*math.Pi*float64(k*i)/float64(n))
	}
	return xx
}
