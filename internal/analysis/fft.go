package analysis

import (
	"math"
	"math/cmplx"
)

// FFT is a recursive radix-2 transform. len(data) must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// PowerSpectrum returns the magnitude of the first half of the FFT of
// series. The mean is removed and the series zero-padded to a power of
// two, so bin k corresponds to k*sampleRate/len(padded).
func PowerSpectrum(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}

	padded := make([]float64, nextPow2(len(series)))
	m := mean(series)
	for i, v := range series {
		padded[i] = v - m
	}

	fft := FFT(padded)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantFrequency is the frequency of the strongest non-DC bin of
// series sampled at sampleRate Hz. It returns 0 for a flat or too short
// series.
func DominantFrequency(series []float64, sampleRate float64) float64 {
	ps := PowerSpectrum(series)
	if len(ps) < 2 || sampleRate <= 0 {
		return 0
	}

	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] < 1e-12 {
		return 0
	}
	return float64(best) * sampleRate / float64(2*len(ps))
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
