package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	peakfinder "github.com/next-exp/peakfinder_go/pkg"
	"github.com/next-exp/peakfinder_go/pkg/plots"
)

var configuration peakfinder.Configuration

var (
	logger         peakfinder.Logger
	VerbosityLevel int
)

func init() {
	logger = peakfinder.NewSlogLogger(os.Stdout, os.Stderr, slog.LevelDebug)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = peakfinder.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	peakfinder.SetConfiguration(configuration)
	peakfinder.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		logger.Info(fmt.Sprintf("Reading configuration file: %s", *configFilename), "main")
		logger.Info(fmt.Sprintf("Data dir: %s", configuration.DataDir), "config")
		logger.Info(fmt.Sprintf("Baseline dir: %s", configuration.BaselineDir), "config")
		logger.Info(fmt.Sprintf("Crop off start: %d", configuration.CropStart), "config")
		logger.Info(fmt.Sprintf("Crop off end: %d", configuration.CropEnd), "config")
		logger.Info(fmt.Sprintf("Time per sample: %v", configuration.TimePerSample), "config")
		logger.Info(fmt.Sprintf("Baseline multiplier cap: %v", configuration.BaselineMultiplierCap), "config")
		logger.Info(fmt.Sprintf("Include second peaks: %v", configuration.IncludeSecondPeaks), "config")
		logger.Info(fmt.Sprintf("Exclude peak numbers: %v", configuration.ExcludePeakNumbers), "config")
	}

	traces, err := readCoincidenceRuns(configuration)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	rows := make([]peakfinder.WeightedMeanRow, len(traces))
	for i, t := range traces {
		rows[i] = t.Row
	}
	peakfinder.SortWeightedMeanRows(rows)

	if err := os.MkdirAll(configuration.OutputDir, 0755); err != nil {
		logger.Error(fmt.Errorf("failed to create output dir: %w", err).Error())
		os.Exit(1)
	}
	filename := filepath.Join(configuration.OutputDir, peakfinder.WeightedMeansFile)
	err = peakfinder.WriteCSVFile(filename, func(w io.Writer) error {
		return peakfinder.WriteWeightedMeans(w, rows)
	})
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Wrote %d weighted means to %s", len(rows), filename), "main")

	if configuration.WritePlots {
		baselines, err := readBaselines(configuration)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		if err := writeOverlays(traces, baselines); err != nil {
			logger.Error(err.Error())
		}
	}
}

type overlayKey struct {
	state   peakfinder.FilterState
	channel string
}

// writeOverlays draws one plot per filter state and channel, each baseline of
// the channel scaled onto the signal range.
func writeOverlays(traces []coincidenceTrace, baselines []baselineTrace) error {
	order := make([]overlayKey, 0)
	groups := make(map[overlayKey][]coincidenceTrace)
	for _, t := range traces {
		key := overlayKey{state: t.Row.Run.FilterState, channel: t.Row.Channel}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	for _, key := range order {
		group := groups[key]
		curves := make([]plots.Curve, len(group))
		signals := make([][]float64, len(group))
		for i, t := range group {
			curves[i] = plots.Curve{
				Label:        fmt.Sprintf("%s, %s", t.Row.Run.Label(), t.Row.Run.CorrelationTime),
				Values:       t.Values,
				WeightedMean: t.Row.Mean.Index,
			}
			signals[i] = t.Values
		}

		var baseline []float64
		scale := 1.0
		for _, b := range baselines {
			if b.Channel != key.channel {
				continue
			}
			s, err := peakfinder.ScaleBaseline(b.Values, signals, configuration.BaselineMultiplierCap)
			if err != nil {
				logger.Error(fmt.Sprintf("cannot scale baseline %s: %v", b.File, err))
				continue
			}
			baseline, scale = b.Values, s
			if VerbosityLevel > 0 {
				logger.Info(fmt.Sprintf("Baseline %s scaled x%.2f", b.File, scale), "plots")
			}
			break
		}

		state := string(key.state)
		if state == "" {
			state = "none"
		}
		p, err := plots.OverlayPlot(fmt.Sprintf("%s, %s", key.channel, state), curves, baseline, scale)
		if err != nil {
			return err
		}
		filename := filepath.Join(configuration.PlotDir, fmt.Sprintf("overlay_%s_%s.png", key.channel, state))
		if err := plots.Save(p, filename); err != nil {
			return err
		}
	}
	return nil
}
