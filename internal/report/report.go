// Package report renders relationship estimates as plain structured
// values and serialises them to JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ibd-data/kinship.report/internal/relate"
	"github.com/ibd-data/kinship.report/internal/segment"
)

// Segment is the JSON shape of one shared segment.
type Segment struct {
	Chromosome int     `json:"chromosome"`
	Length     float64 `json:"length"`
	BPStart    int64   `json:"bp_start"`
	BPEnd      int64   `json:"bp_end"`
}

// Line is one pair's report record. DEst and the labels are null when the
// pair was not significant.
type Line struct {
	Pair        string            `json:"pair"`
	Indv1       string            `json:"indv1"`
	Indv2       string            `json:"indv2"`
	DEst        *int              `json:"d_est"`
	RelEst1     *string           `json:"rel_est1"`
	RelEst2     *string           `json:"rel_est2"`
	N           int               `json:"n"`
	TotalCM     float64           `json:"total_cM"`
	TotalBP     int64             `json:"total_bp"`
	LLs         map[string]string `json:"LLs"`
	Na          int               `json:"na"`
	CreatedDate string            `json:"created_date"`
	Segments    []Segment         `json:"segments"`
	MaxModelP   float64           `json:"max_model_p"`
}

// Build flattens one estimate and its segment list into a report line.
// The per-degree table is keyed by reported degree; na is the count of
// segments attributed to the recent ancestor, zero for insignificant
// pairs.
func Build(pr relate.PairResult, now time.Time) Line {
	est := pr.Est
	line := Line{
		Pair:        est.Pair,
		Indv1:       est.Indiv1,
		Indv2:       est.Indiv2,
		N:           len(est.S),
		TotalCM:     est.TotalCM,
		TotalBP:     segment.TotalBP(pr.Segs),
		LLs:         make(map[string]string, len(est.Alts)),
		CreatedDate: now.UTC().Format("2006-01-02 15:04:05"),
		MaxModelP:   est.P,
	}
	for _, alt := range est.Alts {
		line.LLs[strconv.Itoa(alt.D)] = fmt.Sprintf("%.3f", alt.LL)
	}
	if est.Reject {
		d := est.D
		line.DEst = &d
		line.Na = len(est.S) - est.Np
		if est.RelEst1 != "" {
			r1, r2 := est.RelEst1, est.RelEst2
			line.RelEst1, line.RelEst2 = &r1, &r2
		}
	}
	line.Segments = make([]Segment, 0, len(pr.Segs))
	for _, seg := range pr.Segs {
		line.Segments = append(line.Segments, Segment{
			Chromosome: seg.Chrom,
			Length:     seg.Length,
			BPStart:    seg.BPStart,
			BPEnd:      seg.BPEnd,
		})
	}
	return line
}

// WriteJSON writes the lines as an indented JSON array.
func WriteJSON(w io.Writer, lines []Line) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(lines)
}
