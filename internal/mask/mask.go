// Package mask suppresses or truncates IBD segments that fall in genomic
// regions known to produce spurious matches.
package mask

import (
	"math"

	"github.com/ibd-data/kinship.report/internal/segment"
)

// Buffer is the flanking distance (bp) by which a segment must extend past
// each end of a masked region before it is considered to span it.
const Buffer = 1_000_000

// Region is an artifact-prone genomic interval together with the mean cM
// observed to be spuriously matched inside it.
type Region struct {
	Chrom  int
	Start  int64
	End    int64
	MeanCM float64
}

// The 14 masked regions of Huff et al. 2014 (Table 3), 119.92 cM in total.
// Every region spans at least 5 cM. This table is immutable.
var regions = []Region{
	{9, 38293483, 72605261, 8.15},
	{8, 10428647, 13469693, 7.96},
	{21, 16344186, 19375168, 6.91},
	{10, 44555093, 53240188, 7.58},
	{22, 16051881, 25095451, 20.82},
	{2, 85304243, 99558013, 6.53},
	{1, 118434520, 153401108, 9.95},
	{15, 20060673, 25145260, 10.46},
	{17, 77186666, 78417478, 5.66},
	{15, 27115823, 30295750, 9.29},
	{17, 59518083, 64970531, 6.23},
	{2, 132695025, 141442636, 9.16},
	{16, 19393068, 24031556, 6.18},
	{2, 192352906, 198110229, 5.04},
}

var byChrom = func() map[int][]Region {
	m := make(map[int][]Region)
	for _, r := range regions {
		m[r.Chrom] = append(m[r.Chrom], r)
	}
	return m
}()

// TotalMasked returns the summed mean cM of all masked regions.
func TotalMasked() float64 {
	var m float64
	for _, r := range regions {
		m += r.MeanCM
	}
	return m
}

// Apply adjusts segment lengths for overlap with masked regions and drops
// segments whose adjusted length falls below t. Segments are modified in
// place; the returned slice holds the survivors. A segment already marked
// Masked is not adjusted again, so Apply is idempotent.
//
// Per overlapping region, the first matching rule wins:
// fully inside the buffered region, the segment is zeroed out; spanning the
// whole buffered region, the region's mean cM is subtracted; truncated at
// either end, the length is rescaled by the retained fraction and the
// clipped coordinate moved to the region boundary.
func Apply(segs []*segment.SharedSegment, t float64) []*segment.SharedSegment {
	var kept []*segment.SharedSegment
	for _, s := range segs {
		if !s.Masked {
			maskOne(s)
			s.Masked = true
		}
		if s.Length >= t {
			kept = append(kept, s)
		}
	}
	return kept
}

func maskOne(s *segment.SharedSegment) {
	for _, r := range byChrom[s.Chrom] {
		lo := r.Start - Buffer
		hi := r.End + Buffer
		switch {
		case s.BPStart > lo && s.BPEnd < hi:
			s.Length = 0
		case s.BPStart <= lo && s.BPEnd >= hi:
			s.Length -= r.MeanCM
		case r.Start <= s.BPStart && s.BPStart <= r.End && r.End < s.BPEnd:
			ratio := float64(s.BPEnd-r.End) / float64(s.BPEnd-s.BPStart)
			s.Length = round2(s.Length * ratio)
			s.BPStart = r.End
		case r.End >= s.BPEnd && s.BPEnd >= r.Start && r.Start > s.BPStart:
			ratio := float64(r.Start-s.BPStart) / float64(s.BPEnd-s.BPStart)
			s.Length = round2(s.Length * ratio)
			s.BPEnd = r.Start
		default:
			continue
		}
		return
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
