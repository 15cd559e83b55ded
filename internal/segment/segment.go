// Package segment reads Germline-format match files and prepares shared
// IBD segment lists for relationship estimation.
package segment

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Number of whitespace-delimited columns in a Germline match file line.
// An optional extra haploscore column may follow and is discarded.
const matchColumns = 15

// SharedSegment is one IBD segment shared by a pair of individuals, as
// reported by the upstream matcher. Lengths are in centiMorgans.
type SharedSegment struct {
	IndivID1 string
	IndivID2 string
	Chrom    int
	BPStart  int64
	BPEnd    int64
	Length   float64
	Unit     string

	// Masked is set once region masking has adjusted this segment, so a
	// second masking pass leaves it untouched.
	Masked bool
}

// ParseLine builds a SharedSegment from the columns of one match-file line.
// Column layout follows the Germline match format: family and individual IDs
// for both sides, chromosome, start/end bp, SNP markers, SNP count, length,
// length unit, mismatching SNPs, and the two homozygosity flags.
func ParseLine(fields []string) (*SharedSegment, error) {
	if len(fields) != matchColumns {
		return nil, fmt.Errorf("expected %d columns, got %d", matchColumns, len(fields))
	}

	chrom, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("failed to parse chromosome: %v", err)
	}
	bpStart, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bp start: %v", err)
	}
	bpEnd, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bp end: %v", err)
	}
	length, err := strconv.ParseFloat(fields[10], 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse segment length: %v", err)
	}
	if fields[11] != "cM" {
		return nil, fmt.Errorf("unsupported length unit %q (must be cM)", fields[11])
	}

	return &SharedSegment{
		IndivID1: fields[1],
		IndivID2: fields[3],
		Chrom:    chrom,
		BPStart:  bpStart,
		BPEnd:    bpEnd,
		Length:   length,
		Unit:     fields[11],
	}, nil
}

// ReadMatchFile reads every segment record in the file at path. When
// haploscores is set, each line carries one extra trailing column that is
// dropped before parsing.
func ReadMatchFile(path string, haploscores bool) ([]*SharedSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var segs []*SharedSegment
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if haploscores {
			fields = fields[:len(fields)-1]
		}
		seg, err := ParseLine(fields)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %v", path, lineNo, err)
		}
		segs = append(segs, seg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return segs, nil
}

// PairKey returns the canonical "a:b" identifier for a pair of individuals,
// with the lexicographically smaller ID first.
func PairKey(a, b string) string {
	if a < b {
		return a + ":" + b
	}
	return b + ":" + a
}

// GroupPairs collapses segments into per-pair lists, dropping segments
// shorter than t and, when user is non-empty, segments that do not involve
// that individual.
func GroupPairs(segs []*SharedSegment, t float64, user string) map[string][]*SharedSegment {
	pairs := make(map[string][]*SharedSegment)
	for _, seg := range segs {
		if seg.Length < t {
			continue
		}
		if user != "" && seg.IndivID1 != user && seg.IndivID2 != user {
			continue
		}
		key := PairKey(seg.IndivID1, seg.IndivID2)
		pairs[key] = append(pairs[key], seg)
	}
	return pairs
}

// SortByLength orders segments ascending by cM length, the invariant
// required by the likelihood computations.
func SortByLength(segs []*SharedSegment) {
	sort.Slice(segs, func(i, j int) bool { return segs[i].Length < segs[j].Length })
}

// Lengths extracts the cM lengths from a segment list, preserving order.
func Lengths(segs []*SharedSegment) []float64 {
	s := make([]float64, len(segs))
	for i, seg := range segs {
		s[i] = seg.Length
	}
	return s
}

// TotalBP sums the base-pair extent of the segments, inclusive of both ends.
func TotalBP(segs []*SharedSegment) int64 {
	var total int64
	for _, seg := range segs {
		total += seg.BPEnd - seg.BPStart + 1
	}
	return total
}
