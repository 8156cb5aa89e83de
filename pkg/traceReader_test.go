package peakfinder

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []float64
	}{
		{"one per line", "1\n2\n3\n", []float64{1, 2, 3}},
		{"comma separated", "1,2, 3,\n4", []float64{1, 2, 3, 4}},
		{"blank lines", "\n 5 \n\n6\r\n", []float64{5, 6}},
		{"decimals", "1.5\n2e1\n0\n", []float64{1.5, 20, 0}},
		{"empty", "", []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace, err := ParseTrace(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, trace)
		})
	}
}

func TestParseTraceInvalidSample(t *testing.T) {
	_, err := ParseTrace(strings.NewReader("1\n2\nabc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestParseTraceLongLine(t *testing.T) {
	const n = 20000
	var b strings.Builder
	want := make([]float64, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(strconv.Itoa(1000 + i))
		want[i] = float64(1000 + i)
	}
	require.Greater(t, b.Len(), 64*1024)

	trace, err := ParseTrace(strings.NewReader(b.String() + "\n"))
	require.NoError(t, err)
	assert.Equal(t, want, trace)
}

func TestParseTraceRejectsNonCounts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"nan", "1\nNaN\n", "line 2"},
		{"negative", "1\n2\n-5\n", "line 3"},
		{"infinity", "Inf\n", "line 1"},
		{"negative infinity in a row", "1,2,-Inf\n", "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace, err := ParseTrace(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, trace)
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestLoadTrace(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "CH0_65_7_gain_1_6_pulse.txt")
	require.NoError(t, os.WriteFile(filename, []byte("10\n20\n30\n"), 0o644))

	trace, err := LoadTrace(filename)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, trace)
}

func TestLoadTraceErrors(t *testing.T) {
	_, err := LoadTrace(filepath.Join(t.TempDir(), "missing.txt"))
	var openErr *ErrOpenFile
	require.True(t, errors.As(err, &openErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	filename := filepath.Join(t.TempDir(), "broken.txt")
	require.NoError(t, os.WriteFile(filename, []byte("1\nx\n"), 0o644))
	_, err = LoadTrace(filename)
	require.Error(t, err)
	assert.Contains(t, err.Error(), filename)
}
