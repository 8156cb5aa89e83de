package peakfinder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

const (
	SmoothingDirect = "direct"
	SmoothingFFT    = "fft"
)

type ManualPeaks struct {
	Channel Channel `json:"channel" yaml:"channel"`
	Gain    float64 `json:"gain" yaml:"gain"`
	Pulse   float64 `json:"pulse" yaml:"pulse"`
	Indices []int   `json:"indices" yaml:"indices"`
}

type Configuration struct {
	Verbosity             int           `json:"verbosity" yaml:"verbosity"`
	DataDir               string        `json:"data_dir" yaml:"data_dir"`
	OutputDir             string        `json:"output_dir" yaml:"output_dir"`
	FileOut               string        `json:"file_out" yaml:"file_out"`
	CompressionLevel      int           `json:"compression_level" yaml:"compression_level"`
	WritePlots            bool          `json:"write_plots" yaml:"write_plots"`
	PlotDir               string        `json:"plot_dir" yaml:"plot_dir"`
	MetricsFile           string        `json:"metrics_file" yaml:"metrics_file"`
	CropStart             int           `json:"crop_off_start" yaml:"crop_off_start"`
	CropEnd               int           `json:"crop_off_end" yaml:"crop_off_end"`
	HeightThreshold       float64       `json:"counts_threshold" yaml:"counts_threshold"`
	MinSpacing            int           `json:"peak_spacing_threshold" yaml:"peak_spacing_threshold"`
	Sigma                 float64       `json:"sigma" yaml:"sigma"`
	SmoothingMethod       string        `json:"smoothing_method" yaml:"smoothing_method"`
	GainVoltages          []float64     `json:"gain_voltages_to_plot" yaml:"gain_voltages_to_plot"`
	PulseVoltages         []float64     `json:"pulse_voltages_to_plot" yaml:"pulse_voltages_to_plot"`
	ManualPeakIndices     []ManualPeaks `json:"manual_peak_indices" yaml:"manual_peak_indices"`
	TimePerSample         float64       `json:"time_per_sample" yaml:"time_per_sample"`
	BaselineMultiplierCap float64       `json:"baseline_multiplier_cap" yaml:"baseline_multiplier_cap"`
	BaselineDir           string        `json:"baseline_dir" yaml:"baseline_dir"`
	IncludeSecondPeaks    []int         `json:"include_second_peaks" yaml:"include_second_peaks"`
	ExcludePeakNumbers    []int         `json:"exclude_peak_numbers" yaml:"exclude_peak_numbers"`
	Dataset               string        `json:"dataset" yaml:"dataset"`
	NoDB                  bool          `json:"no_db" yaml:"no_db"`
	Host                  string        `json:"host" yaml:"host"`
	User                  string        `json:"user" yaml:"user"`
	Passwd                string        `json:"pass" yaml:"pass"`
	DBName                string        `json:"dbname" yaml:"dbname"`
	NumWorkers            int           `json:"num_workers" yaml:"num_workers"`
	Parallel              bool          `json:"parallel" yaml:"parallel"`
}

var configuration = DefaultConfiguration()

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func DefaultConfiguration() Configuration {
	var config Configuration

	config.Verbosity = 0
	config.OutputDir = "results-from-generated-data"
	config.CompressionLevel = 4
	config.PlotDir = "plots"
	config.CropStart = 100
	config.CropEnd = 3000
	config.HeightThreshold = 100
	config.MinSpacing = 16
	config.Sigma = 3.6
	config.SmoothingMethod = SmoothingDirect
	config.TimePerSample = 1.0
	config.BaselineMultiplierCap = 10
	config.NoDB = true
	config.Host = "localhost"
	config.User = "sipmreader"
	config.DBName = "SIPMLAB"
	config.NumWorkers = 1
	config.Parallel = false
	return config
}

// LoadConfiguration reads a JSON file, or YAML when the extension is .yaml/.yml,
// on top of the defaults and validates the result.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("error parsing configuration %s: %w", filename, err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c Configuration) PeakParameters() PeakParameters {
	return PeakParameters{
		CropStart:       c.CropStart,
		CropEnd:         c.CropEnd,
		Sigma:           c.Sigma,
		HeightThreshold: c.HeightThreshold,
		MinSpacing:      c.MinSpacing,
		SmoothingMethod: c.Smoothing(),
	}
}

// Smoothing is the configured smoothing method, direct when left empty.
func (c Configuration) Smoothing() string {
	if c.SmoothingMethod == "" {
		return SmoothingDirect
	}
	return c.SmoothingMethod
}

func (c Configuration) Validate() error {
	if err := c.PeakParameters().Validate(); err != nil {
		return err
	}
	if c.TimePerSample <= 0 {
		return &InvalidParameterError{Name: "time_per_sample", Value: c.TimePerSample, Reason: "must be positive"}
	}
	if c.BaselineMultiplierCap <= 0 {
		return &InvalidParameterError{Name: "baseline_multiplier_cap", Value: c.BaselineMultiplierCap, Reason: "must be positive"}
	}
	if c.NumWorkers < 1 {
		return &InvalidParameterError{Name: "num_workers", Value: c.NumWorkers, Reason: "must be at least 1"}
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		return &InvalidParameterError{Name: "compression_level", Value: c.CompressionLevel, Reason: "must be between 0 and 9"}
	}
	for _, m := range c.ManualPeakIndices {
		if !m.Channel.Known() {
			return &InvalidParameterError{Name: "manual_peak_indices.channel", Value: m.Channel, Reason: "unknown channel"}
		}
		for _, idx := range m.Indices {
			if idx < 0 {
				return &InvalidParameterError{Name: "manual_peak_indices.indices", Value: idx, Reason: "must not be negative"}
			}
		}
	}
	return nil
}

// ManualPeakTable builds the override table from the configuration entries.
func (c Configuration) ManualPeakTable() ManualPeakTable {
	table := make(ManualPeakTable)
	for _, m := range c.ManualPeakIndices {
		key := RunKey{Channel: m.Channel, GainVoltage: m.Gain, PulseHeight: m.Pulse}
		table[key] = append(table[key], m.Indices...)
	}
	return table
}

func (t ManualPeakTable) Lookup(key RunKey) []int {
	return t[key]
}

// Merge adds the entries of other, duplicates are resolved when peaks are merged.
func (t ManualPeakTable) Merge(other ManualPeakTable) {
	for key, indices := range other {
		t[key] = append(t[key], indices...)
	}
}

// SortedKeys returns the keys ordered by channel, gain and pulse.
func (t ManualPeakTable) SortedKeys() []RunKey {
	keys := make([]RunKey, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b RunKey) int {
		switch {
		case a.Channel != b.Channel:
			return strings.Compare(string(a.Channel), string(b.Channel))
		case a.GainVoltage < b.GainVoltage:
			return -1
		case a.GainVoltage > b.GainVoltage:
			return 1
		case a.PulseHeight < b.PulseHeight:
			return -1
		case a.PulseHeight > b.PulseHeight:
			return 1
		}
		return 0
	})
	return keys
}

// SelectedGain reports whether a gain passes the gain_voltages_to_plot filter.
func (c Configuration) SelectedGain(gain float64) bool {
	return len(c.GainVoltages) == 0 || containsFloat(c.GainVoltages, gain)
}

func (c Configuration) SelectedPulse(pulse float64) bool {
	return len(c.PulseVoltages) == 0 || containsFloat(c.PulseVoltages, pulse)
}

func containsFloat(values []float64, v float64) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
