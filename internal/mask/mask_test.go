package mask

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ibd-data/kinship.report/internal/segment"
)

// Masked region on chromosome 9: 38,293,483..72,605,261, 8.15 cM.
const (
	chr9Low    = 38293483
	chr9High   = 72605261
	chr9MaskCM = 8.15
)

func chr9Seg(start, end int64, length float64) *segment.SharedSegment {
	return &segment.SharedSegment{
		IndivID1: "user1", IndivID2: "user2",
		Chrom: 9, BPStart: start, BPEnd: end, Length: length,
	}
}

func TestTotalMasked(t *testing.T) {
	if got := math.Round(TotalMasked()*1000) / 1000; got != 119.92 {
		t.Errorf("TotalMasked() = %v, want 119.92", got)
	}
}

func TestApplyFullyContained(t *testing.T) {
	// A 6.29 cM segment exactly spanning the unbuffered region sits fully
	// inside the buffered region and is dropped.
	res := Apply([]*segment.SharedSegment{chr9Seg(chr9Low, chr9High, 6.29)}, 2.5)
	if len(res) != 0 {
		t.Fatalf("len(res) = %d, want 0", len(res))
	}

	// Still inside when touching the buffered boundary on one side only.
	res = Apply([]*segment.SharedSegment{chr9Seg(chr9Low-Buffer, chr9High, 6.29)}, 2.5)
	if len(res) != 0 {
		t.Fatalf("seg starting at buffer edge: len(res) = %d, want 0", len(res))
	}
}

func TestApplySpanningRegion(t *testing.T) {
	start, end := int64(chr9Low-Buffer), int64(chr9High+Buffer)

	// Adjusted length falls below threshold: dropped.
	res := Apply([]*segment.SharedSegment{chr9Seg(start, end, chr9MaskCM+2)}, 2.5)
	if len(res) != 0 {
		t.Fatalf("len(res) = %d, want 0 (adjusted below t)", len(res))
	}

	// Adjusted length stays at threshold: kept, mean cM subtracted,
	// coordinates unchanged.
	res = Apply([]*segment.SharedSegment{chr9Seg(start, end, chr9MaskCM+2.5)}, 2.5)
	if len(res) != 1 {
		t.Fatalf("len(res) = %d, want 1", len(res))
	}
	if got := res[0].Length; got != 2.5 {
		t.Errorf("Length = %v, want 2.5", got)
	}
	if res[0].BPStart != start || res[0].BPEnd != end {
		t.Errorf("coordinates changed: %d..%d", res[0].BPStart, res[0].BPEnd)
	}
}

func TestApplyTruncateStart(t *testing.T) {
	// Segment starts inside the region and extends far beyond it: length
	// rescales to the retained fraction, start moves to the region end.
	start, end := int64(chr9Low+50), int64(chr9High+20*Buffer)
	length := 10.29
	ratio := float64(end-chr9High) / float64(end-start)
	want := math.Round(length*ratio*100) / 100

	res := Apply([]*segment.SharedSegment{chr9Seg(start, end, length)}, 2.5)
	if len(res) != 1 {
		t.Fatalf("len(res) = %d, want 1", len(res))
	}
	if res[0].Length != want {
		t.Errorf("Length = %v, want %v", res[0].Length, want)
	}
	if res[0].BPStart != chr9High {
		t.Errorf("BPStart = %d, want %d", res[0].BPStart, int64(chr9High))
	}

	// A short overhang rescales below t and is dropped.
	res = Apply([]*segment.SharedSegment{chr9Seg(start, chr9High+Buffer+1, 6.29)}, 2.5)
	if len(res) != 0 {
		t.Errorf("len(res) = %d, want 0", len(res))
	}
}

func TestApplyTruncateEnd(t *testing.T) {
	start, end := int64(chr9Low-20*Buffer), int64(chr9High-50)
	length := 10.29
	ratio := float64(chr9Low-start) / float64(end-start)
	want := math.Round(length*ratio*100) / 100

	res := Apply([]*segment.SharedSegment{chr9Seg(start, end, length)}, 2.5)
	if len(res) != 1 {
		t.Fatalf("len(res) = %d, want 1", len(res))
	}
	if res[0].Length != want {
		t.Errorf("Length = %v, want %v", res[0].Length, want)
	}
	if res[0].BPEnd != chr9Low {
		t.Errorf("BPEnd = %d, want %d", res[0].BPEnd, int64(chr9Low))
	}
}

func TestApplyUntouchedChromosome(t *testing.T) {
	// No masked regions on chromosome 3.
	s := &segment.SharedSegment{Chrom: 3, BPStart: 1_000_000, BPEnd: 9_000_000, Length: 7.7}
	res := Apply([]*segment.SharedSegment{s}, 2.5)
	if len(res) != 1 || res[0].Length != 7.7 {
		t.Fatalf("segment on unmasked chromosome modified: %+v", res)
	}
}

func TestApplyIdempotent(t *testing.T) {
	segs := []*segment.SharedSegment{
		chr9Seg(chr9Low-Buffer, chr9High+Buffer, chr9MaskCM+4),
		chr9Seg(chr9Low+50, chr9High+20*Buffer, 10.29),
		{Chrom: 3, BPStart: 1_000_000, BPEnd: 9_000_000, Length: 7.7},
	}
	once := Apply(segs, 2.5)

	copies := make([]segment.SharedSegment, len(once))
	for i, s := range once {
		copies[i] = *s
	}

	twice := Apply(once, 2.5)
	if len(twice) != len(once) {
		t.Fatalf("second Apply changed count: %d -> %d", len(once), len(twice))
	}
	for i, s := range twice {
		if diff := cmp.Diff(copies[i], *s); diff != "" {
			t.Errorf("second Apply changed segment %d (-first +second):\n%s", i, diff)
		}
	}
}
