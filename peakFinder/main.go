package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	peakfinder "github.com/next-exp/peakfinder_go/pkg"
	"github.com/next-exp/peakfinder_go/pkg/h5writer"
	"github.com/next-exp/peakfinder_go/pkg/plots"
	"github.com/prometheus/client_golang/prometheus"
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
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	registry := prometheus.NewRegistry()
	if err := peakfinder.RegisterMetrics(registry); err != nil {
		logger.Error(fmt.Errorf("Error registering metrics: %w", err).Error())
		os.Exit(1)
	}

	manual, err := loadManualPeaks(configuration)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	inputs, err := peakfinder.DiscoverRuns(configuration)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Found %d runs in %s", len(inputs), configuration.DataDir), "main")

	workers := 1
	if configuration.Parallel {
		workers = configuration.NumWorkers
	}
	start := time.Now()
	results, aggregator := peakfinder.ProcessRuns(inputs, configuration.PeakParameters(), manual, workers)
	logger.Info(fmt.Sprintf("Analysed %d of %d runs in %d ms", len(results), len(inputs),
		time.Since(start).Milliseconds()), "main")

	combined := aggregator.Combined()
	summaries := peakfinder.Summarize(combined)
	firstPeaks := peakfinder.FirstPeaks(combined)

	if err := writeTables(results, combined, summaries, firstPeaks); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if configuration.FileOut != "" {
		if err := writeHDF5(combined, summaries, firstPeaks); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}

	if configuration.WritePlots {
		if err := writePlots(results, combined, summaries); err != nil {
			logger.Error(err.Error())
		}
	}

	if configuration.MetricsFile != "" {
		if err := peakfinder.WriteMetrics(configuration.MetricsFile, registry); err != nil {
			logger.Error(fmt.Errorf("Error writing metrics: %w", err).Error())
		}
	}
}

func loadManualPeaks(config peakfinder.Configuration) (peakfinder.ManualPeakTable, error) {
	manual := config.ManualPeakTable()
	if config.NoDB {
		return manual, nil
	}

	dbConn, err := peakfinder.ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
	if err != nil {
		return nil, fmt.Errorf("Error connection to database: %w", err)
	}
	defer dbConn.Close()

	fromDB, err := peakfinder.LoadManualPeaks(dbConn, config.Dataset)
	if err != nil {
		return nil, fmt.Errorf("error loading manual peaks: %w", err)
	}
	manual.Merge(fromDB)
	if VerbosityLevel > 0 {
		for _, key := range manual.SortedKeys() {
			message := fmt.Sprintf("Manual peaks %s gain %v V pulse %v V: %v",
				key.Channel, key.GainVoltage, key.PulseHeight, manual.Lookup(key))
			logger.Info(message, "database")
		}
	}
	return manual, nil
}

func writeTables(results []peakfinder.RunResult, combined peakfinder.CombinedDataset,
	summaries []peakfinder.SlopeSummary, firstPeaks []peakfinder.PeakRecord) error {
	dir := configuration.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	removed, err := peakfinder.RemoveStalePeakTables(dir)
	if err != nil {
		return err
	}
	if VerbosityLevel > 0 && removed > 0 {
		logger.Info(fmt.Sprintf("Removed %d old peak tables from %s", removed, dir), "writer")
	}

	timestamp := time.Now()
	for _, r := range results {
		filename := filepath.Join(dir, peakfinder.PeakTableFilename(r.Meta))
		err := peakfinder.WriteCSVFile(filename, func(w io.Writer) error {
			return peakfinder.WritePeakTable(w, r.Records, timestamp)
		})
		if err != nil {
			return err
		}
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{peakfinder.CombinedTableFile, func(w io.Writer) error { return peakfinder.WriteCombinedTable(w, combined, timestamp) }},
		{peakfinder.SummaryTableFile, func(w io.Writer) error { return peakfinder.WriteSummaryTable(w, summaries) }},
		{peakfinder.DetailedTableFile, func(w io.Writer) error {
			return peakfinder.WriteDetailedTable(w, peakfinder.DetailedRows(combined, summaries))
		}},
		{peakfinder.FirstPeaksTableFile, func(w io.Writer) error { return peakfinder.WriteFirstPeaksTable(w, firstPeaks) }},
	}
	for _, out := range outputs {
		filename := filepath.Join(dir, out.name)
		if err := peakfinder.WriteCSVFile(filename, out.write); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Wrote %s", filename), "writer")
	}
	return nil
}

func writeHDF5(combined peakfinder.CombinedDataset, summaries []peakfinder.SlopeSummary,
	firstPeaks []peakfinder.PeakRecord) error {
	writer, err := h5writer.NewWriter(configuration.FileOut, configuration.CompressionLevel)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := writer.WritePeaks(combined); err != nil {
		return err
	}
	if err := writer.WriteSummary(summaries); err != nil {
		return err
	}
	if err := writer.WriteFirstPeaks(firstPeaks); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Wrote %d peaks to %s", writer.PeakRows, configuration.FileOut), "writer")
	return nil
}

func writePlots(results []peakfinder.RunResult, combined peakfinder.CombinedDataset,
	summaries []peakfinder.SlopeSummary) error {
	files, err := plots.SaveRunPlots(configuration.PlotDir, results)
	if err != nil {
		return err
	}
	if len(summaries) > 0 {
		p, err := plots.SpacingPlot("Peak index vs peak number", combined, summaries)
		if err != nil {
			return err
		}
		filename := filepath.Join(configuration.PlotDir, "index_vs_peak_number.png")
		if err := plots.Save(p, filename); err != nil {
			return err
		}
		files = append(files, filename)
	}
	if VerbosityLevel > 0 {
		logger.Info(fmt.Sprintf("Saved %d plots to %s", len(files), configuration.PlotDir), "plots")
	}
	return nil
}
