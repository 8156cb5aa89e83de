package peakfinder

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Kernel radius in units of sigma.
const gaussianTruncate = 4.0

type PeakParameters struct {
	CropStart       int
	CropEnd         int
	Sigma           float64
	HeightThreshold float64
	MinSpacing      int
	SmoothingMethod string
}

func (p PeakParameters) Validate() error {
	if p.CropStart < 0 {
		return &InvalidParameterError{Name: "crop_off_start", Value: p.CropStart, Reason: "must not be negative"}
	}
	if p.CropEnd < 0 {
		return &InvalidParameterError{Name: "crop_off_end", Value: p.CropEnd, Reason: "must not be negative"}
	}
	if p.Sigma <= 0 {
		return &InvalidParameterError{Name: "sigma", Value: p.Sigma, Reason: "must be positive"}
	}
	if p.HeightThreshold <= 0 {
		return &InvalidParameterError{Name: "counts_threshold", Value: p.HeightThreshold, Reason: "must be positive"}
	}
	if p.MinSpacing <= 0 {
		return &InvalidParameterError{Name: "peak_spacing_threshold", Value: p.MinSpacing, Reason: "must be positive"}
	}
	switch p.SmoothingMethod {
	case "", SmoothingDirect, SmoothingFFT:
	default:
		return &InvalidParameterError{Name: "smoothing_method", Value: p.SmoothingMethod, Reason: "expected direct or fft"}
	}
	return nil
}

// Crop returns a copy of trace[cropStart : len(trace)-cropEnd].
func Crop(trace []float64, cropStart int, cropEnd int) ([]float64, error) {
	if cropStart < 0 {
		return nil, &InvalidParameterError{Name: "crop_off_start", Value: cropStart, Reason: "must not be negative"}
	}
	if cropEnd < 0 {
		return nil, &InvalidParameterError{Name: "crop_off_end", Value: cropEnd, Reason: "must not be negative"}
	}
	if cropStart+cropEnd >= len(trace) {
		return nil, &OutOfRangeError{Op: "crop", Value: cropStart + cropEnd, Length: len(trace)}
	}
	cropped := make([]float64, len(trace)-cropStart-cropEnd)
	copy(cropped, trace[cropStart:len(trace)-cropEnd])
	return cropped, nil
}

// Preprocess crops the trace and applies a Gaussian filter with reflected edges.
func Preprocess(trace []float64, cropStart int, cropEnd int, sigma float64) (CroppedSmoothedTrace, error) {
	return preprocess(trace, cropStart, cropEnd, sigma, GaussianSmooth)
}

func PreprocessWith(trace []float64, params PeakParameters) (CroppedSmoothedTrace, error) {
	smooth := GaussianSmooth
	if params.SmoothingMethod == SmoothingFFT {
		smooth = GaussianSmoothFFT
	}
	return preprocess(trace, params.CropStart, params.CropEnd, params.Sigma, smooth)
}

func preprocess(trace []float64, cropStart int, cropEnd int, sigma float64,
	smooth func([]float64, float64) []float64) (CroppedSmoothedTrace, error) {
	if sigma <= 0 {
		return CroppedSmoothedTrace{}, &InvalidParameterError{Name: "sigma", Value: sigma, Reason: "must be positive"}
	}
	cropped, err := Crop(trace, cropStart, cropEnd)
	if err != nil {
		return CroppedSmoothedTrace{}, err
	}
	return CroppedSmoothedTrace{
		Values:  smooth(cropped, sigma),
		Cropped: cropped,
		Offset:  cropStart,
		Sigma:   sigma,
	}, nil
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(gaussianTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-0.5 * x * x / (sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflectIndex maps i into [0, n) mirroring about the sample edges (d c b a | a b c d).
func reflectIndex(i int, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

func GaussianSmooth(data []float64, sigma float64) []float64 {
	n := len(data)
	smoothed := make([]float64, n)
	if n == 0 {
		return smoothed
	}
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	for i := 0; i < n; i++ {
		val := 0.0
		for j, w := range kernel {
			val += w * data[reflectIndex(i+j-radius, n)]
		}
		smoothed[i] = val
	}
	return smoothed
}

// GaussianSmoothFFT computes the same filter as GaussianSmooth through a
// linear FFT convolution of the reflect-padded signal.
func GaussianSmoothFFT(data []float64, sigma float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	padded := make([]float64, n+2*radius)
	for i := range padded {
		padded[i] = data[reflectIndex(i-radius, n)]
	}

	size := len(padded) + len(kernel) - 1
	signal := make([]float64, size)
	copy(signal, padded)
	window := make([]float64, size)
	copy(window, kernel)

	spectrum := fft.FFTReal(signal)
	response := fft.FFTReal(window)
	for i := range spectrum {
		spectrum[i] *= response[i]
	}
	convolved := fft.IFFT(spectrum)

	// Full convolution index k covers padded[k-2r .. k]; sample i sits at padded[i+r].
	smoothed := make([]float64, n)
	for i := range smoothed {
		smoothed[i] = real(convolved[i+2*radius])
	}
	return smoothed
}
