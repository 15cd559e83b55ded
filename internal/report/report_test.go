package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ibd-data/kinship.report/internal/relate"
	"github.com/ibd-data/kinship.report/internal/segment"
)

var reportTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func significantPair() relate.PairResult {
	return relate.PairResult{
		Est: &relate.Estimate{
			Pair: "TestA:TestB", Indiv1: "TestA", Indiv2: "TestB",
			D: 7, Reject: true, Np: 3, P: 5.05e-17, TotalCM: 59.2,
			RelEst1: "2nd Cousin Once Removed", RelEst2: "2nd Cousin Once Removed",
			S:    []float64{2.7, 3.0, 3.3, 11.9, 12.1, 12.8, 13.4},
			Alts: []relate.AltModel{{D: 6, LL: -24.5129}, {D: 7, LL: -23.691094}},
		},
		Segs: []*segment.SharedSegment{
			{Chrom: 3, BPStart: 1000, BPEnd: 5001999, Length: 11.9, Unit: "cM"},
			{Chrom: 7, BPStart: 2000, BPEnd: 8002999, Length: 12.1, Unit: "cM"},
		},
	}
}

func TestBuildSignificant(t *testing.T) {
	line := Build(significantPair(), reportTime)

	d := 7
	rel := "2nd Cousin Once Removed"
	want := Line{
		Pair:        "TestA:TestB",
		Indv1:       "TestA",
		Indv2:       "TestB",
		DEst:        &d,
		RelEst1:     &rel,
		RelEst2:     &rel,
		N:           7,
		TotalCM:     59.2,
		TotalBP:     13002000,
		LLs:         map[string]string{"6": "-24.513", "7": "-23.691"},
		Na:          4,
		CreatedDate: "2026-03-14 09:30:00",
		Segments: []Segment{
			{Chromosome: 3, Length: 11.9, BPStart: 1000, BPEnd: 5001999},
			{Chromosome: 7, Length: 12.1, BPStart: 2000, BPEnd: 8002999},
		},
		MaxModelP: 5.05e-17,
	}
	if diff := cmp.Diff(want, line); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildInsignificant(t *testing.T) {
	pr := significantPair()
	pr.Est.Reject = false
	pr.Est.RelEst1, pr.Est.RelEst2 = "", ""

	line := Build(pr, reportTime)
	if line.DEst != nil {
		t.Errorf("DEst = %v, want nil", *line.DEst)
	}
	if line.RelEst1 != nil || line.RelEst2 != nil {
		t.Error("labels set for an insignificant pair")
	}
	if line.Na != 0 {
		t.Errorf("Na = %d, want 0", line.Na)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []Line{Build(significantPair(), reportTime)}); err != nil {
		t.Fatal(err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("decoded %d lines, want 1", len(decoded))
	}
	rec := decoded[0]
	if rec["d_est"] != float64(7) {
		t.Errorf("d_est = %v, want 7", rec["d_est"])
	}
	if rec["total_cM"] != 59.2 {
		t.Errorf("total_cM = %v, want 59.2", rec["total_cM"])
	}
	lls, ok := rec["LLs"].(map[string]any)
	if !ok || lls["7"] != "-23.691" {
		t.Errorf("LLs = %v", rec["LLs"])
	}
	if !bytes.Contains(buf.Bytes(), []byte("    \"pair\"")) {
		t.Error("output not indented with four spaces")
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "null\n" {
		t.Errorf("empty output = %q, want null", got)
	}
}
