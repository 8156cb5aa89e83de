package plots

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	peakfinder "github.com/next-exp/peakfinder_go/pkg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	black    = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	darkBlue = color.RGBA{R: 0, G: 0, B: 139, A: 255}
	green    = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	orange   = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	deepPink = color.RGBA{R: 255, G: 20, B: 147, A: 255}
	red      = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	gray     = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

var pulseColors = map[float64]color.RGBA{
	1.0: black,
	1.1: darkBlue,
	1.3: green,
	1.6: orange,
	2.0: deepPink,
	2.3: red,
}

var palette = []color.RGBA{darkBlue, orange, green, red, deepPink, black}

func PulseColor(pulse float64) color.Color {
	if c, ok := pulseColors[pulse]; ok {
		return c
	}
	return gray
}

const (
	plotWidth  = 15 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// peakErrors pairs peak positions with their sqrt(N) error bars.
type peakErrors struct {
	plotter.XYs
	plotter.YErrors
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p
}

// RunsPlot draws the smoothed traces of runs sharing a channel and gain, with
// a marker, an error bar and the peak number on every labelled peak.
func RunsPlot(title string, results []peakfinder.RunResult) (*plot.Plot, error) {
	p := newPlot(title, "Index", "Counts")

	for _, r := range results {
		c := PulseColor(r.Meta.PulseHeight)

		pts := make(plotter.XYs, r.Trace.Len())
		for i, v := range r.Trace.Values {
			pts[i] = plotter.XY{X: float64(i), Y: v}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("error plotting %s: %w", r.Meta.SourceFile, err)
		}
		line.Color = c
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%sV pulse", peakfinder.FormatVoltage(r.Meta.PulseHeight)), line)

		if len(r.Records) == 0 {
			continue
		}
		peaks := peakErrors{
			XYs:     make(plotter.XYs, len(r.Records)),
			YErrors: make(plotter.YErrors, len(r.Records)),
		}
		labels := make([]string, len(r.Records))
		for i, rec := range r.Records {
			peaks.XYs[i] = plotter.XY{X: float64(rec.PeakIndex), Y: rec.PeakCounts}
			peaks.YErrors[i].Low = rec.CountsError
			peaks.YErrors[i].High = rec.CountsError
			labels[i] = strconv.Itoa(rec.PeakNumber)
		}

		scatter, err := plotter.NewScatter(peaks.XYs)
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(3)

		bars, err := plotter.NewYErrorBars(peaks)
		if err != nil {
			return nil, err
		}
		bars.Color = gray
		bars.CapWidth = vg.Points(4)

		numbers, err := plotter.NewLabels(plotter.XYLabels{XYs: peaks.XYs, Labels: labels})
		if err != nil {
			return nil, err
		}
		p.Add(scatter, bars, numbers)
	}
	return p, nil
}

// SpacingPlot draws peak index against peak number for every summarised group
// together with its least squares line.
func SpacingPlot(title string, combined peakfinder.CombinedDataset, summaries []peakfinder.SlopeSummary) (*plot.Plot, error) {
	p := newPlot(title, "Peak Number", "Peak Index")

	rows := peakfinder.DetailedRows(combined, summaries)
	points := make(map[peakfinder.RunGroup]plotter.XYs)
	for _, row := range rows {
		g := row.Summary.Group
		points[g] = append(points[g], plotter.XY{X: float64(row.Record.PeakNumber), Y: float64(row.Record.PeakIndex)})
	}

	for i, s := range summaries {
		c := PulseColor(s.Group.PulseHeight)
		if c == color.Color(gray) {
			c = palette[i%len(palette)]
		}

		scatter, err := plotter.NewScatter(points[s.Group])
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}

		slope, intercept := s.FitSlope, s.FitIntercept
		fit := plotter.NewFunction(func(x float64) float64 { return intercept + slope*x })
		fit.Color = c
		fit.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

		p.Add(scatter, fit)
		p.Legend.Add(fmt.Sprintf("%s %sV gain %sV pulse (%.1f ± %.1f)",
			s.Group.Channel, peakfinder.FormatVoltage(s.Group.GainVoltage),
			peakfinder.FormatVoltage(s.Group.PulseHeight), s.AverageSpacing, s.SpacingStdDev), scatter)
	}
	return p, nil
}

// Curve is one coincidence trace, optionally marked at its weighted mean index.
type Curve struct {
	Label        string
	Values       []float64
	WeightedMean float64
}

// OverlayPlot draws the signal curves over the baseline scaled by scale.
func OverlayPlot(title string, signals []Curve, baseline []float64, scale float64) (*plot.Plot, error) {
	p := newPlot(title, "Index", "Counts")

	maxY := 0.0
	for i, s := range signals {
		c := palette[i%len(palette)]
		pts := make(plotter.XYs, len(s.Values))
		for j, v := range s.Values {
			pts[j] = plotter.XY{X: float64(j), Y: v}
			maxY = math.Max(maxY, v)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = c
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(s.Label, line)

		if !math.IsNaN(s.WeightedMean) {
			marker, err := plotter.NewLine(plotter.XYs{{X: s.WeightedMean, Y: 0}, {X: s.WeightedMean, Y: maxY}})
			if err != nil {
				return nil, err
			}
			marker.Color = c
			marker.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
			p.Add(marker)
		}
	}

	if len(baseline) > 0 {
		pts := make(plotter.XYs, len(baseline))
		for j, v := range baseline {
			pts[j] = plotter.XY{X: float64(j), Y: v * scale}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = gray
		line.Width = vg.Points(2)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("baseline x%.2f", scale), line)
	}
	return p, nil
}

// Save writes p as a PNG (or any format gonum/plot infers from the extension).
func Save(p *plot.Plot, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := p.Save(plotWidth, plotHeight, filename); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", filename, err)
	}
	return nil
}

type channelGain struct {
	channel peakfinder.Channel
	gain    float64
}

// SaveRunPlots writes one {channel}_gain_{gain}V.png per channel and gain into dir.
func SaveRunPlots(dir string, results []peakfinder.RunResult) ([]string, error) {
	order := make([]channelGain, 0)
	groups := make(map[channelGain][]peakfinder.RunResult)
	for _, r := range results {
		key := channelGain{channel: r.Meta.Channel, gain: r.Meta.GainVoltage}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	files := make([]string, 0, len(order))
	for _, key := range order {
		gain := peakfinder.FormatVoltage(key.gain)
		p, err := RunsPlot(fmt.Sprintf("%s, %s V gain", key.channel, gain), groups[key])
		if err != nil {
			return files, err
		}
		filename := filepath.Join(dir, fmt.Sprintf("%s_gain_%sV.png", key.channel, gain))
		if err := Save(p, filename); err != nil {
			return files, err
		}
		files = append(files, filename)
	}
	return files, nil
}
