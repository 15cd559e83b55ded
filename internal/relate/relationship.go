package relate

import (
	"fmt"
	"math"
)

// Highest reported degree with a relationship label.
const maxLabelledDegree = 20

// Years assumed between successive generations.
const yearsPerGeneration = 30

// relMap maps a reported degree to labels keyed by generation gap
// (negative toward the older side). Built once at init and never mutated.
var relMap = buildRelMap(maxLabelledDegree)

// PotentialRelationship labels the consanguinity implied by a reported
// degree d and the pair's birth years, assuming 30 years per generation.
// The first label is from the first individual's perspective and the
// second from the other side's. For small odd degrees where the
// generation gap leaves the direction ambiguous, both labels are the same
// combined "X or Y" form. ok is false when d or the generation gap falls
// outside the table.
func PotentialRelationship(d, year1, year2 int) (rel1, rel2 string, ok bool) {
	genBin := 0
	if d != 0 {
		genBin = int(math.Round(float64(year2-year1) / yearsPerGeneration))
	}
	binMap, ok := relMap[d]
	if !ok {
		return "", "", false
	}
	if _, ok := binMap[genBin]; !ok {
		return "", "", false
	}
	if genBin%2 != 0 && d < 5 {
		gap := genBin
		if gap < 0 {
			gap = -gap
		}
		combined := binMap[-gap] + " or " + binMap[gap]
		return combined, combined, true
	}
	return binMap[genBin], binMap[-genBin], true
}

// buildRelMap precomputes the consanguinity table for degrees 0..dmax,
// following the standard table of consanguinity: direct ancestors and
// descendants on the diagonal, aunt/uncle lines beside it, cousins with
// removal in between.
func buildRelMap(dmax int) map[int]map[int]string {
	m := map[int]map[int]string{
		0: {0: "Identical Twins or Duplication"},
		1: {-1: "Parent", 1: "Child"},
		2: {-2: "Grandparent", 0: "Sibling", 2: "Grandchild"},
		3: {-3: "Great Grandparent", -1: "Aunt/Uncle", 1: "Niece/Nephew", 3: "Great Grandchild"},
	}
	for d := 4; d <= dmax; d++ {
		bins := make(map[int]string)
		k := 1
		if d%2 == 0 {
			k = 2
			bins[0] = ordinal(d/2-1) + " Cousin"
		}
		for i := k; i <= d; i += 2 {
			var up, down string
			switch {
			case i == d:
				base := ordinal(i-2) + " Great Grand"
				up = base + "parent"
				down = base + "child"
			case i == d-2:
				base := ""
				if i-2 > 1 {
					base = ordinal(i-2) + " "
				}
				base += "Great "
				if i-2 > 0 {
					base += "Grand "
				}
				up = base + "Aunt/Uncle"
				down = base + "Niece/Nephew"
			default:
				name := ordinal(d/2-1-i/2) + " Cousin " + countWord(i) + " "
				if i > 3 {
					name += "Times "
				}
				name += "Removed"
				up, down = name, name
			}
			bins[-i] = up
			bins[i] = down
		}
		m[d] = bins
	}
	return m
}

// ordinal renders n as "1st", "2nd", "3rd", "4th", ...
func ordinal(n int) string {
	suffix := "th"
	i := n
	if n >= 20 {
		i = n % 10
	}
	switch i {
	case 1:
		suffix = "st"
	case 2:
		suffix = "nd"
	case 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

var countWords = []string{
	4: "Four", 5: "Five", 6: "Six", 7: "Seven", 8: "Eight", 9: "Nine",
	10: "Ten", 11: "Eleven", 12: "Twelve", 13: "Thirteen", 14: "Fourteen",
	15: "Fifteen", 16: "Sixteen", 17: "Seventeen", 18: "Eighteen",
	19: "Nineteen", 20: "Twenty",
}

// countWord renders a removal count as a capitalised word, with the
// conventional Once/Twice/Thrice for the first three.
func countWord(n int) string {
	switch n {
	case 1:
		return "Once"
	case 2:
		return "Twice"
	case 3:
		return "Thrice"
	}
	if n >= 4 && n < len(countWords) {
		return countWords[n]
	}
	return fmt.Sprintf("%d", n)
}
