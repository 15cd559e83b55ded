// Package viz renders summary charts of an analysis run: shared cM per
// chromosome for the significant pairs, and a histogram of the estimated
// degrees of separation.
package viz

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ibd-data/kinship.report/internal/relate"
)

const autosomes = 22

// RenderChromosomeChart writes an HTML bar chart of total shared cM per
// chromosome, one series per significant pair, to dir/segments.html.
func RenderChromosomeChart(dir string, results []relate.PairResult) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Shared segments by chromosome",
			Subtitle: fmt.Sprintf("pairs=%d", len(results)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "chromosome"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "shared cM"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	labels := make([]string, autosomes)
	for c := 1; c <= autosomes; c++ {
		labels[c-1] = fmt.Sprintf("%d", c)
	}
	bar.SetXAxis(labels)

	// Deterministic series order.
	sorted := make([]relate.PairResult, 0, len(results))
	for _, pr := range results {
		if pr.Est.Reject {
			sorted = append(sorted, pr)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Est.Pair < sorted[j].Est.Pair })

	for _, pr := range sorted {
		perChrom := make([]float64, autosomes+1)
		for _, seg := range pr.Segs {
			if seg.Chrom >= 1 && seg.Chrom <= autosomes {
				perChrom[seg.Chrom] += seg.Length
			}
		}
		data := make([]opts.BarData, autosomes)
		for c := 1; c <= autosomes; c++ {
			data[c-1] = opts.BarData{Value: perChrom[c]}
		}
		bar.AddSeries(pr.Est.Pair, data)
	}

	f, err := os.Create(filepath.Join(dir, "segments.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return bar.Render(f)
}
