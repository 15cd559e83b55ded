package segment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validFields() []string {
	return []string{
		"1", "TestA", "2", "TestB", "9", "38293483", "72605261",
		"rs100", "rs200", "100", "6.29", "cM", "0", "0", "0",
	}
}

func TestParseLine(t *testing.T) {
	seg, err := ParseLine(validFields())
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if seg.IndivID1 != "TestA" || seg.IndivID2 != "TestB" {
		t.Errorf("individuals = %s, %s, want TestA, TestB", seg.IndivID1, seg.IndivID2)
	}
	if seg.Chrom != 9 {
		t.Errorf("Chrom = %d, want 9", seg.Chrom)
	}
	if seg.BPStart != 38293483 || seg.BPEnd != 72605261 {
		t.Errorf("coordinates = %d..%d, want 38293483..72605261", seg.BPStart, seg.BPEnd)
	}
	if seg.Length != 6.29 {
		t.Errorf("Length = %v, want 6.29", seg.Length)
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]string) []string
		want   string
	}{
		{"too few columns", func(f []string) []string { return f[:14] }, "expected 15 columns"},
		{"too many columns", func(f []string) []string { return append(f, "0.99") }, "expected 15 columns"},
		{"bad chromosome", func(f []string) []string { f[4] = "x"; return f }, "chromosome"},
		{"bad bp start", func(f []string) []string { f[5] = "abc"; return f }, "bp start"},
		{"bad bp end", func(f []string) []string { f[6] = "abc"; return f }, "bp end"},
		{"bad length", func(f []string) []string { f[10] = "six"; return f }, "length"},
		{"wrong unit", func(f []string) []string { f[11] = "MB"; return f }, "unsupported length unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.mutate(validFields()))
			if err == nil {
				t.Fatal("ParseLine() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestReadMatchFile(t *testing.T) {
	segs, err := ReadMatchFile(filepath.Join("testdata", "test_LL.match"), false)
	if err != nil {
		t.Fatalf("ReadMatchFile() error = %v", err)
	}
	if len(segs) != 14 {
		t.Fatalf("len(segs) = %d, want 14", len(segs))
	}
}

func TestReadMatchFileHaploscores(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "test_LL.match"))
	if err != nil {
		t.Fatal(err)
	}
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		lines = append(lines, line+" 0.97")
	}
	path := filepath.Join(t.TempDir(), "haplo.match")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	segs, err := ReadMatchFile(path, true)
	if err != nil {
		t.Fatalf("ReadMatchFile() error = %v", err)
	}
	if len(segs) != 14 {
		t.Fatalf("len(segs) = %d, want 14", len(segs))
	}

	// Without the haploscores flag the extra column is a column-count error.
	if _, err := ReadMatchFile(path, false); err == nil {
		t.Error("ReadMatchFile() with unexpected haploscore column: error = nil, want error")
	}
}

func TestGroupPairs(t *testing.T) {
	segs, err := ReadMatchFile(filepath.Join("testdata", "test_LL.match"), false)
	if err != nil {
		t.Fatal(err)
	}

	pairs := GroupPairs(segs, 2.5, "")
	if len(pairs) != 2 {
		t.Fatalf("len(pairs) = %d, want 2", len(pairs))
	}
	if got := len(pairs["TestA:TestB"]); got != 7 {
		t.Errorf("TestA:TestB segments = %d, want 7", got)
	}
	if got := len(pairs["TestB:TestC"]); got != 7 {
		t.Errorf("TestB:TestC segments = %d, want 7", got)
	}

	// Filtering to one individual drops unrelated pairs.
	pairs = GroupPairs(segs, 2.5, "TestA")
	if len(pairs) != 1 {
		t.Fatalf("len(pairs) with user filter = %d, want 1", len(pairs))
	}
	if _, ok := pairs["TestB:TestC"]; ok {
		t.Error("TestB:TestC should be filtered out for user TestA")
	}
}

func TestGroupPairsThreshold(t *testing.T) {
	segs := []*SharedSegment{
		{IndivID1: "A", IndivID2: "B", Length: 2.4},
		{IndivID1: "A", IndivID2: "B", Length: 2.5},
		{IndivID1: "A", IndivID2: "B", Length: 5.0},
	}
	pairs := GroupPairs(segs, 2.5, "")
	if got := len(pairs["A:B"]); got != 2 {
		t.Errorf("segments above threshold = %d, want 2", got)
	}
}

func TestPairKey(t *testing.T) {
	if got := PairKey("TestB", "TestA"); got != "TestA:TestB" {
		t.Errorf("PairKey = %q, want TestA:TestB", got)
	}
	if got := PairKey("TestA", "TestB"); got != "TestA:TestB" {
		t.Errorf("PairKey = %q, want TestA:TestB", got)
	}
}

func TestSortByLength(t *testing.T) {
	segs := []*SharedSegment{{Length: 9.2}, {Length: 2.6}, {Length: 4.1}}
	SortByLength(segs)
	want := []float64{2.6, 4.1, 9.2}
	for i, w := range want {
		if segs[i].Length != w {
			t.Errorf("segs[%d].Length = %v, want %v", i, segs[i].Length, w)
		}
	}
}

func TestTotalBP(t *testing.T) {
	segs := []*SharedSegment{
		{BPStart: 100, BPEnd: 199},
		{BPStart: 1000, BPEnd: 1099},
	}
	if got := TotalBP(segs); got != 200 {
		t.Errorf("TotalBP = %d, want 200", got)
	}
}
