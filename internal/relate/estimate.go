package relate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsorted reports a segment length list that is not sorted ascending.
var ErrUnsorted = errors.New("segments not sorted")

// Degrees of freedom for the likelihood-ratio test of the best alternative
// against the background-only null (d and the split point are free).
const lrTestDF = 2

// BirthYears carries the known years of birth for a pair, first individual
// first. A nil *BirthYears means the years are unknown and a parity-based
// default generation gap is substituted when labelling.
type BirthYears struct {
	Year1 int
	Year2 int
}

// AltModel is one row of the per-degree likelihood profile.
type AltModel struct {
	D           int     // reported degree (internal meiosis count minus one)
	Np          int     // segments attributed to background at the optimum split
	LL          float64 // maximum log-likelihood at this degree
	ExtraParams int     // extra free parameters consumed by degree-specific adjustments
}

// Estimate is the result of testing one pair for a relationship. It is
// immutable once returned.
type Estimate struct {
	Pair   string
	Indiv1 string
	Indiv2 string

	D      int  // accepted reported degree; meaningful only when Reject is set
	Reject bool // null hypothesis rejected: the pair is significantly related

	NullLL float64
	MaxLL  float64
	P      float64 // p-value of the max model against the null

	LowerD int
	UpperD int
	HasCI  bool

	Alts []AltModel
	Np   int // background segment count at the accepted degree

	S       []float64
	TotalCM float64

	// Relationship labels from each individual's perspective. Populated
	// iff Reject is set and the degree is within the label table.
	RelEst1 string
	RelEst2 string
}

// EstimateRelation tests a pair of individuals for a recent relationship.
// pair is the "indv1:indv2" identifier, s the pair's segment lengths
// sorted ascending (n = len(s)), dob the optional birth years. The sweep
// runs the internal meiosis count d over 1..maxD; the reported degree is
// d-1. When ci is set and the null is rejected, a profile-likelihood
// confidence interval over the reported degree is included.
func EstimateRelation(pair string, dob *BirthYears, n int, s []float64, h0 *Background, ha *Ancestry, maxD int, alpha float64, ci bool) (*Estimate, error) {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return nil, fmt.Errorf("pair %s: %w", pair, ErrUnsorted)
		}
	}

	nullLL, err := h0.LL(n, s)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", pair, err)
	}

	alts := make([]AltModel, 0, maxD)
	best := 0
	for d := 1; d <= maxD; d++ {
		np, mll, extras, err := ha.MLL(n, s, d)
		if err != nil {
			return nil, fmt.Errorf("pair %s: %w", pair, err)
		}
		alts = append(alts, AltModel{D: d - 1, Np: np, LL: mll, ExtraParams: extras})
		if alts[len(alts)-1].LL > alts[best].LL {
			best = len(alts) - 1
		}
	}
	sel := alts[best]

	// In the first-degree band the Gamma mixture can absorb likelihood
	// that a non-adjacent degree explains almost as well. Keep the
	// first-degree estimate only if it beats the best alternative outside
	// the band by its extra free parameters.
	if ha.firstDegAdj && sel.D == 1 {
		second := AltModel{}
		found := false
		for _, alt := range alts {
			if alt.D == 1 {
				continue
			}
			if !found || alt.LL > second.LL {
				second, found = alt, true
			}
		}
		if found {
			if keep, _ := lrTest(sel.LL, second.LL, sel.ExtraParams, alpha); !keep {
				sel = second
			}
		}
	}

	reject, p := lrTest(sel.LL, nullLL, lrTestDF, alpha)

	est := &Estimate{
		Pair:   pair,
		D:      sel.D,
		Reject: reject,
		NullLL: nullLL,
		MaxLL:  sel.LL,
		P:      p,
		Alts:   alts,
		Np:     sel.Np,
		S:      s,
		TotalCM: func() float64 {
			var sum float64
			for _, v := range s {
				sum += v
			}
			return sum
		}(),
	}
	if parts := strings.SplitN(pair, ":", 2); len(parts) == 2 {
		est.Indiv1, est.Indiv2 = parts[0], parts[1]
	} else {
		est.Indiv1 = pair
	}

	if ci && reject {
		est.LowerD, est.UpperD, est.HasCI = likelihoodRatioCI(alts, sel.LL, lrTestDF, alpha)
	}

	if reject {
		y1, y2, known := 0, 0, dob != nil
		if known {
			y1, y2 = dob.Year1, dob.Year2
		} else if est.D%2 != 0 {
			// Unknown birth years: assume same generation for even
			// degrees, adjacent generations for odd ones.
			y2 = 31
		}
		if r1, r2, ok := PotentialRelationship(est.D, y1, y2); ok {
			est.RelEst1, est.RelEst2 = r1, r2
		}
	}

	return est, nil
}
