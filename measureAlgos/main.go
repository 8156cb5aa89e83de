package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"
	peakfinder "github.com/next-exp/peakfinder_go/pkg"
	"github.com/next-exp/peakfinder_go/pkg/h5writer"
	"gonum.org/v1/gonum/floats"
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
	repeat := flag.Int("repeat", 3, "Repetitions per measurement")
	noHDF5 := flag.Bool("no-hdf5", false, "Skip the compression level sweep")
	flag.Parse()

	var err error
	configuration, err = peakfinder.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	peakfinder.SetConfiguration(configuration)
	peakfinder.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
	}

	inputs, err := peakfinder.DiscoverRuns(configuration)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	fmt.Println("Total runs loaded: ", len(inputs))

	if *repeat < 1 {
		*repeat = 1
	}
	manual := configuration.ManualPeakTable()

	start := time.Now()
	results := make(map[string][]peakfinder.RunResult)
	var combined peakfinder.CombinedDataset
	for _, method := range []string{peakfinder.SmoothingDirect, peakfinder.SmoothingFFT} {
		params := configuration.PeakParameters()
		params.SmoothingMethod = method
		for i := 0; i < *repeat; i++ {
			start := time.Now()
			processed, aggregator := peakfinder.ProcessRuns(inputs, params, manual, configuration.NumWorkers)
			duration := time.Since(start)
			fmt.Printf("(smoothing %s, run %d) Time: %d ms, %d peaks\n", method, i, duration.Milliseconds(), aggregator.Len())
			results[method] = processed
			if method == configuration.Smoothing() {
				combined = aggregator.Combined()
			}
		}
	}
	compareSmoothing(results[peakfinder.SmoothingDirect], results[peakfinder.SmoothingFFT])

	if !*noHDF5 {
		filename := configuration.FileOut
		if filename == "" {
			filename = "measure.h5"
		}
		summaries := peakfinder.Summarize(combined)
		for compressionLevel := 0; compressionLevel < 10; compressionLevel++ {
			for i := 0; i < *repeat; i++ {
				start := time.Now()
				if err := writeTables(filename, compressionLevel, combined, summaries); err != nil {
					logger.Error(err.Error())
					continue
				}
				duration := time.Since(start)
				fileInfo, err := os.Stat(filename)
				if err != nil {
					logger.Error(fmt.Sprintf("Error getting file info: %v", err))
					continue
				}
				fmt.Printf("(hdf5, comp %d) Time: %d ms, size %d bytes\n", compressionLevel, duration.Milliseconds(), fileInfo.Size())
			}
		}
	}

	duration := time.Since(start)
	fmt.Printf("Total time: %d ms\n", duration.Milliseconds())
}

// compareSmoothing reports the largest sample difference between both
// smoothing methods and the runs whose peak sets disagree.
func compareSmoothing(direct []peakfinder.RunResult, viaFFT []peakfinder.RunResult) {
	if len(direct) != len(viaFFT) {
		logger.Error(fmt.Sprintf("smoothing methods analysed %d and %d runs", len(direct), len(viaFFT)))
		return
	}
	maxDiff := 0.0
	for i := range direct {
		a, b := direct[i].Trace.Values, viaFFT[i].Trace.Values
		if len(a) == len(b) && len(a) > 0 {
			diff := make([]float64, len(a))
			floats.SubTo(diff, a, b)
			maxDiff = max(maxDiff, floats.Norm(diff, math.Inf(1)))
		}
		if d := cmp.Diff(direct[i].Peaks, viaFFT[i].Peaks); d != "" {
			fmt.Printf("Peaks differ for %s (-direct +fft):\n%s", direct[i].Meta.SourceFile, d)
		}
	}
	fmt.Printf("Max smoothing difference: %g counts\n", maxDiff)
}

func writeTables(filename string, compressionLevel int, combined peakfinder.CombinedDataset,
	summaries []peakfinder.SlopeSummary) error {
	writer, err := h5writer.NewWriter(filename, compressionLevel)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := writer.WritePeaks(combined); err != nil {
		return err
	}
	return writer.WriteSummary(summaries)
}
