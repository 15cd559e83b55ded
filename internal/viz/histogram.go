package viz

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ibd-data/kinship.report/internal/relate"
)

// RenderDegreeHistogram writes a PNG histogram of the accepted degree
// estimates across all significant pairs to dir/degrees.png. It is a
// no-op when no pair was significant.
func RenderDegreeHistogram(dir string, results []relate.PairResult) error {
	var degrees plotter.Values
	for _, pr := range results {
		if pr.Est.Reject {
			degrees = append(degrees, float64(pr.Est.D))
		}
	}
	if len(degrees) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Estimated degrees of separation"
	p.X.Label.Text = "degree"
	p.Y.Label.Text = "pairs"

	maxD := 0
	for _, d := range degrees {
		if int(d) > maxD {
			maxD = int(d)
		}
	}
	h, err := plotter.NewHist(degrees, maxD+1)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %v", err)
	}
	p.Add(h)

	return p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(dir, "degrees.png"))
}
