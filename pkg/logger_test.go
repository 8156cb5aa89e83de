package peakfinder

import (
	"bytes"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerFormat(t *testing.T) {
	var infoOut, errorOut bytes.Buffer
	l := NewSlogLogger(&infoOut, &errorOut, slog.LevelDebug)

	l.Info("Found 3 runs", "main")
	l.Error("error processing run CH0.txt")

	pattern := regexp.MustCompile(`^\[\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\] \[main\] Found 3 runs\n$`)
	assert.Regexp(t, pattern, infoOut.String())
	assert.Contains(t, errorOut.String(), `"msg":"error processing run CH0.txt"`)
}

func TestHandlerLevel(t *testing.T) {
	var infoOut bytes.Buffer
	l := NewSlogLogger(&infoOut, &bytes.Buffer{}, slog.LevelError)
	l.Info("hidden", "main")
	assert.Empty(t, infoOut.String())
}
