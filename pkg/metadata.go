package peakfinder

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Matches e.g. "_65_7_gain_1_6_pulse": gain 65.7 V, pulse 1.6 V.
var gainPulseRegexp = regexp.MustCompile(`_(\d+)_?(\d+)_gain_(\d+)_?(\d+)[Vv]?_pulse`)

// IsRunFile selects light runs: names starting with CH, dark counts excluded.
func IsRunFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, "CH") && !strings.Contains(strings.ToLower(base), "dark")
}

func ChannelFromName(name string) Channel {
	base := filepath.Base(name)
	switch {
	case strings.Contains(base, string(AddBack)):
		return AddBack
	case strings.Contains(base, string(CH0)):
		return CH0
	case strings.Contains(base, string(CH1)):
		return CH1
	}
	return ChannelUnknown
}

// ParseGainPulse extracts the gain and pulse voltages from a run file name.
func ParseGainPulse(name string) (float64, float64, error) {
	base := filepath.Base(name)
	match := gainPulseRegexp.FindStringSubmatch(base)
	if match == nil {
		return 0, 0, &MissingMetadataError{Source: base, Field: "gain/pulse"}
	}
	gain, err := strconv.ParseFloat(match[1]+"."+match[2], 64)
	if err != nil {
		return 0, 0, &MissingMetadataError{Source: base, Field: "gain"}
	}
	pulse, err := strconv.ParseFloat(match[3]+"."+match[4], 64)
	if err != nil {
		return 0, 0, &MissingMetadataError{Source: base, Field: "pulse"}
	}
	return gain, pulse, nil
}

// ParseRunFilename builds the run metadata of a trace file. An unrecognised
// channel is reported as ChannelUnknown, missing voltages as an error. When the
// parent directory is a coincidence directory its correlation time and filter
// state are attached.
func ParseRunFilename(path string) (RunMetadata, error) {
	base := filepath.Base(path)
	meta := RunMetadata{
		Channel:    ChannelFromName(base),
		SourceFile: base,
	}

	gain, pulse, err := ParseGainPulse(base)
	if err != nil {
		return meta, err
	}
	meta.GainVoltage = gain
	meta.PulseHeight = pulse

	if dir := filepath.Base(filepath.Dir(path)); strings.HasPrefix(dir, "peak") {
		if run, err := ParseCoincidenceDir(dir); err == nil {
			meta.CorrelationTime = run.CorrelationTime
			meta.FilterState = run.FilterState
		}
	}
	return meta, nil
}
