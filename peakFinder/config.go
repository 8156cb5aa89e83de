package main

import (
	"fmt"

	peakfinder "github.com/next-exp/peakfinder_go/pkg"
)

func printConfiguration(config peakfinder.Configuration, logger peakfinder.Logger) {
	logger.Info(fmt.Sprintf("Data dir: %s", config.DataDir), "config")
	logger.Info(fmt.Sprintf("Output dir: %s", config.OutputDir), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Write plots: %t", config.WritePlots), "config")
	logger.Info(fmt.Sprintf("Plot dir: %s", config.PlotDir), "config")
	logger.Info(fmt.Sprintf("Metrics file: %s", config.MetricsFile), "config")
	logger.Info(fmt.Sprintf("Crop off start: %d", config.CropStart), "config")
	logger.Info(fmt.Sprintf("Crop off end: %d", config.CropEnd), "config")
	logger.Info(fmt.Sprintf("Counts threshold: %v", config.HeightThreshold), "config")
	logger.Info(fmt.Sprintf("Peak spacing threshold: %d", config.MinSpacing), "config")
	logger.Info(fmt.Sprintf("Sigma: %v", config.Sigma), "config")
	logger.Info(fmt.Sprintf("Smoothing method: %s", config.SmoothingMethod), "config")
	logger.Info(fmt.Sprintf("Gain voltages: %v", config.GainVoltages), "config")
	logger.Info(fmt.Sprintf("Pulse voltages: %v", config.PulseVoltages), "config")
	logger.Info(fmt.Sprintf("Manual peak entries: %d", len(config.ManualPeakIndices)), "config")
	logger.Info(fmt.Sprintf("Dataset: %s", config.Dataset), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
}
