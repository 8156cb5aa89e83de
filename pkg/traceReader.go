package peakfinder

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadTrace reads a whole trace file into memory.
func LoadTrace(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	trace, err := ParseTrace(file)
	if err != nil {
		return nil, fmt.Errorf("error reading trace %s: %w", filename, err)
	}
	return trace, nil
}

// Longest accepted line; a whole trace may sit on a single comma separated line.
const maxTraceLine = 256 * 1024 * 1024

// ParseTrace accepts one sample per line or comma separated samples. Blank
// lines and empty fields are ignored. Samples are counts: NaN, infinities and
// negative values are rejected.
func ParseTrace(r io.Reader) ([]float64, error) {
	trace := make([]float64, 0, 4096)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTraceLine)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		for _, field := range strings.Split(text, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid sample %q: %w", line, field, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, fmt.Errorf("line %d: invalid sample %q: counts must be finite and non-negative", line, field)
			}
			trace = append(trace, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}
	return trace, nil
}
