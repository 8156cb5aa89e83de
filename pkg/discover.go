package peakfinder

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// DiscoverRuns loads every light run below config.DataDir that passes the gain
// and pulse selection. Unreadable or unnamed files are logged and skipped.
func DiscoverRuns(config Configuration) ([]RunInput, error) {
	inputs := make([]RunInput, 0)
	err := filepath.WalkDir(config.DataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsRunFile(d.Name()) {
			return nil
		}

		meta, err := ParseRunFilename(path)
		if err != nil {
			logger.Error(fmt.Sprintf("skipping %s: %v", path, err))
			return nil
		}
		if !config.SelectedGain(meta.GainVoltage) || !config.SelectedPulse(meta.PulseHeight) {
			return nil
		}

		samples, err := LoadTrace(path)
		if err != nil {
			logger.Error(fmt.Sprintf("could not load %s: %v", path, err))
			return nil
		}
		if config.Verbosity > 0 {
			message := fmt.Sprintf("Loaded %s | Gain = %v V | Pulse = %v V | %d samples from %s",
				meta.Channel, meta.GainVoltage, meta.PulseHeight, len(samples), d.Name())
			logger.Info(message, "fileReader")
		}
		inputs = append(inputs, RunInput{Meta: meta, Samples: samples})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", config.DataDir, err)
	}
	return inputs, nil
}
