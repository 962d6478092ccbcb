// Package report renders run summaries as images.
package report

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// BestFitnessFileName is the default file name of the best-fitness plot.
const BestFitnessFileName = "best_fitness.png"

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no generations to plot")

// PlotBestFitness draws best fitness per generation and saves it to path.
// The image format follows the file extension. mean is optional; when it has
// one entry per generation it is drawn as a second, dashed line.
func PlotBestFitness(path string, best, mean []float64) error {
	if len(best) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = "Best fitness per generation"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"
	p.X.Min = 0
	p.Add(plotter.NewGrid())

	bestLine, bestPoints, err := plotter.NewLinePoints(series(best))
	if err != nil {
		return fmt.Errorf("best fitness line: %w", err)
	}
	bestLine.Width = vg.Points(1.8)
	bestPoints.GlyphStyle.Shape = draw.CircleGlyph{}
	bestPoints.GlyphStyle.Radius = vg.Points(2)
	p.Add(bestLine, bestPoints)
	p.Legend.Add("best", bestLine, bestPoints)

	if len(mean) == len(best) {
		meanLine, err := plotter.NewLine(series(mean))
		if err != nil {
			return fmt.Errorf("mean fitness line: %w", err)
		}
		meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(meanLine)
		p.Legend.Add("mean", meanLine)
	}

	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}

func series(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	return pts
}
