package segment

import "sort"

// Merge combines segments on the same chromosome whose base-pair gap is at
// most mergeLen, treating them as one true segment split by the upstream
// matcher. Lengths are summed and the end coordinate extended, and a merge
// may chain across more than two adjacent segments. mergeLen <= 0 disables
// merging and returns the input unchanged.
func Merge(segs []*SharedSegment, mergeLen int64) []*SharedSegment {
	if mergeLen <= 0 || len(segs) < 2 {
		return segs
	}

	byChrom := make(map[int][]*SharedSegment)
	var chroms []int
	for _, seg := range segs {
		if _, ok := byChrom[seg.Chrom]; !ok {
			chroms = append(chroms, seg.Chrom)
		}
		byChrom[seg.Chrom] = append(byChrom[seg.Chrom], seg)
	}
	sort.Ints(chroms)

	var merged []*SharedSegment
	for _, chrom := range chroms {
		group := byChrom[chrom]
		sort.Slice(group, func(i, j int) bool { return group[i].BPStart < group[j].BPStart })
		cur := group[0]
		for _, next := range group[1:] {
			if next.BPStart-cur.BPEnd <= mergeLen {
				if next.BPEnd > cur.BPEnd {
					cur.BPEnd = next.BPEnd
				}
				cur.Length += next.Length
				continue
			}
			merged = append(merged, cur)
			cur = next
		}
		merged = append(merged, cur)
	}
	return merged
}
