package peakfinder

import (
	"math"
	"sync"
)

// bumps returns a length n trace with a Gaussian of the given amplitude and
// width centred on each index of centers.
func bumps(n int, centers []int, amplitude float64, width float64) []float64 {
	trace := make([]float64, n)
	for i := range trace {
		for _, c := range centers {
			d := float64(i - c)
			trace[i] += amplitude * math.Exp(-0.5*d*d/(width*width))
		}
	}
	return trace
}

func constant(n int, v float64) []float64 {
	trace := make([]float64, n)
	for i := range trace {
		trace[i] = v
	}
	return trace
}

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(message string, module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, module+": "+message)
}

func (l *recordingLogger) Error(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, message)
}

// useLogger swaps the package logger for the duration of a test.
func useLogger(t interface{ Cleanup(func()) }, l Logger) {
	previous := logger
	SetLogger(l)
	t.Cleanup(func() { SetLogger(previous) })
}
