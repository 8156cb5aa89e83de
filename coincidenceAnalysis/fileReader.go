package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	peakfinder "github.com/next-exp/peakfinder_go/pkg"
)

type coincidenceTrace struct {
	Row    peakfinder.WeightedMeanRow
	Values []float64
}

type baselineTrace struct {
	Channel string
	File    string
	Values  []float64
}

func txtFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// readCoincidenceRuns analyses every trace in the peak{A}_and{B}_* directories
// of dataDir that passes the peak selection.
func readCoincidenceRuns(config peakfinder.Configuration) ([]coincidenceTrace, error) {
	entries, err := os.ReadDir(config.DataDir)
	if err != nil {
		return nil, &peakfinder.ErrOpenFile{Filename: config.DataDir, Err: err}
	}

	traces := make([]coincidenceTrace, 0)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "peak") {
			continue
		}
		run, err := peakfinder.ParseCoincidenceDir(entry.Name())
		if err != nil {
			logger.Error(fmt.Sprintf("skipping %s: %v", entry.Name(), err))
			continue
		}
		if !run.Selected(config.IncludeSecondPeaks, config.ExcludePeakNumbers) {
			if VerbosityLevel > 0 {
				logger.Info(fmt.Sprintf("Skipping %s (%s not selected)", entry.Name(), run.Label()), "fileReader")
			}
			continue
		}

		dir := filepath.Join(config.DataDir, entry.Name())
		files, err := txtFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			name := filepath.Base(path)
			if strings.HasPrefix(name, "Data") {
				continue
			}
			samples, err := peakfinder.LoadTrace(path)
			if err != nil {
				logger.Error(fmt.Sprintf("could not load %s: %v", path, err))
				continue
			}
			row, cropped, err := peakfinder.AnalyzeCoincidenceTrace(name, run, samples,
				config.CropStart, config.CropEnd, config.TimePerSample)
			if err != nil {
				logger.Error(fmt.Sprintf("error processing %s: %v", path, err))
				continue
			}
			if VerbosityLevel > 0 {
				message := fmt.Sprintf("%s %s, %s, %s: total counts = %.2f, weighted mean index = %.2f",
					row.Channel, run.Label(), run.FilterState, run.CorrelationTime, row.Mean.Total, row.Mean.Index)
				logger.Info(message, "fileReader")
			}
			traces = append(traces, coincidenceTrace{Row: row, Values: cropped})
		}
	}
	return traces, nil
}

// readBaselines loads the CH0@/CH1@ baseline traces of baselineDir, cropped
// like the coincidence traces.
func readBaselines(config peakfinder.Configuration) ([]baselineTrace, error) {
	if config.BaselineDir == "" {
		return nil, nil
	}
	files, err := txtFiles(config.BaselineDir)
	if err != nil {
		return nil, err
	}

	baselines := make([]baselineTrace, 0)
	for _, path := range files {
		name := filepath.Base(path)
		if !strings.HasPrefix(name, "CH0@") && !strings.HasPrefix(name, "CH1@") {
			continue
		}
		samples, err := peakfinder.LoadTrace(path)
		if err != nil {
			logger.Error(fmt.Sprintf("could not load baseline %s: %v", path, err))
			continue
		}
		cropped, err := peakfinder.Crop(samples, config.CropStart, config.CropEnd)
		if err != nil {
			logger.Error(fmt.Sprintf("could not crop baseline %s: %v", path, err))
			continue
		}
		baselines = append(baselines, baselineTrace{
			Channel: string(peakfinder.CoincidenceChannel(name)),
			File:    name,
			Values:  cropped,
		})
	}
	return baselines, nil
}
