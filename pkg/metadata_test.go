package peakfinder

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGainPulse(t *testing.T) {
	tests := []struct {
		name  string
		gain  float64
		pulse float64
	}{
		{"CH0@DT5720B_75_EspectrumF_65_7_gain_1_6_pulse_60s.txt", 65.7, 1.6},
		{"CH1_657_gain_16V_pulse.txt", 65.7, 1.6},
		{"CH0_66_0_gain_2_0V_pulse_10s.txt", 66.0, 2.0},
		{"/data/run3/AddBack_65_7_gain_1_3v_pulse.txt", 65.7, 1.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gain, pulse, err := ParseGainPulse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.gain, gain)
			assert.Equal(t, tt.pulse, pulse)
		})
	}
}

func TestParseGainPulseMissing(t *testing.T) {
	for _, name := range []string{"CH0_baseline.txt", "CH0_65_7_gain.txt", "CH1_gain_1_6_pulse.txt"} {
		_, _, err := ParseGainPulse(name)
		var missing *MissingMetadataError
		require.True(t, errors.As(err, &missing), name)
		assert.Equal(t, "gain/pulse", missing.Field)
	}
}

func TestIsRunFile(t *testing.T) {
	assert.True(t, IsRunFile("CH0_65_7_gain_1_6_pulse.txt"))
	assert.True(t, IsRunFile("/data/CH1@DT5720B_65_7_gain_1_6_pulse.txt"))
	assert.False(t, IsRunFile("CH0_Dark_65_7_gain.txt"))
	assert.False(t, IsRunFile("0@AddBack_65_7_gain_1_6_pulse.txt"))
	assert.False(t, IsRunFile("/data/CH0/notes.txt"))
}

func TestChannelFromName(t *testing.T) {
	assert.Equal(t, CH0, ChannelFromName("CH0@DT5720B.txt"))
	assert.Equal(t, CH1, ChannelFromName("/data/CH0/CH1_65_7_gain.txt"))
	assert.Equal(t, AddBack, ChannelFromName("0@AddBack_CH0.txt"))
	assert.Equal(t, ChannelUnknown, ChannelFromName("spectrum.txt"))
}

func TestParseRunFilename(t *testing.T) {
	meta, err := ParseRunFilename(filepath.Join("data", "CH1_65_7_gain_1_6_pulse_60s.txt"))
	require.NoError(t, err)
	assert.Equal(t, RunMetadata{
		Channel:     CH1,
		GainVoltage: 65.7,
		PulseHeight: 1.6,
		SourceFile:  "CH1_65_7_gain_1_6_pulse_60s.txt",
	}, meta)
}

func TestParseRunFilenameInCoincidenceDir(t *testing.T) {
	path := filepath.Join("data", "peak1_and3_750ns_filtered", "CH0_65_7_gain_1_6_pulse.txt")
	meta, err := ParseRunFilename(path)
	require.NoError(t, err)
	assert.Equal(t, "750ns", meta.CorrelationTime)
	assert.Equal(t, Filtered, meta.FilterState)
	assert.Equal(t, RunGroup{Channel: CH0, GainVoltage: 65.7, PulseHeight: 1.6, FilterState: Filtered, CorrelationTime: "750ns"}, meta.Group())
}

func TestParseRunFilenameUnknownChannel(t *testing.T) {
	meta, err := ParseRunFilename("spectrum_65_7_gain_1_6_pulse.txt")
	require.NoError(t, err)
	assert.Equal(t, ChannelUnknown, meta.Channel)
	assert.False(t, meta.Channel.Known())

	_, err = ParseRunFilename("CH0_spectrum.txt")
	var missing *MissingMetadataError
	assert.True(t, errors.As(err, &missing))
}
