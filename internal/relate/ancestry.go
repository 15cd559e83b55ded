package relate

import (
	"math"

	"github.com/ibd-data/kinship.report/internal/mask"
)

// Number of recent ancestors shared through the modelled paths. Two, per
// the supplementary material of Huff et al. 2011; the reported degree is
// the internal meiosis count minus one to account for this convention.
const sharedAncestors = 2

// Ancestry is the alternative-hypothesis calculator. It reuses the
// background model for the population-attributed portion of a segment
// list (composition, not inheritance) and adds the recent-ancestor terms
// parameterised by the candidate meiosis count d.
type Ancestry struct {
	bg *Background
	c  int     // autosome count
	r  float64 // effective recombination events per haploid genome per generation

	firstDegAdj  bool
	avuncularAdj bool
}

// NewAncestry builds the alternative model. c is the autosome count and r
// the per-generation recombination-event rate. Unless nomask is set, r is
// reduced by the total masked genome length so that the expected segment
// count reflects the genome actually searched. The two adjustment flags
// enable the first-degree and avuncular special cases.
func NewAncestry(c int, r float64, bg *Background, firstDegAdj, avuncularAdj, nomask bool) *Ancestry {
	if !nomask {
		r -= mask.TotalMasked() / 100
	}
	return &Ancestry{
		bg:           bg,
		c:            c,
		r:            r,
		firstDegAdj:  firstDegAdj,
		avuncularAdj: avuncularAdj,
	}
}

// logFa is the log density of one ancestral segment length at meiosis
// count d. The second return reports whether the first-degree Gamma
// mixture consumed an extra free parameter for this segment.
func (a *Ancestry) logFa(i float64, d int) (float64, bool, error) {
	if i < a.bg.t {
		return 0, false, ErrBelowThreshold
	}
	lp := -float64(d) * (i - a.bg.t) / 100
	if a.firstDegAdj && d == 2 {
		// Gamma-derived mixture (eq. S2): k is the maximum-likelihood
		// shape estimate, at least one crossover interval per segment.
		k := int(math.Floor(i/(100/float64(d)))) + 1
		extra := k > 1
		if i-a.bg.t > 0 {
			lp += float64(k-1) * math.Log(i-a.bg.t)
		} else {
			lp += -(1 << 20) // log undefined at zero excess length
		}
		lp += -logFactorial(k-1) - float64(k)*math.Log(100/float64(d))
		return lp, extra, nil
	}
	lp += -math.Log(100 / float64(d))
	return lp, false, nil
}

// logSa sums logFa over a length list and counts the extra free parameters
// introduced by the first-degree mixture.
func (a *Ancestry) logSa(s []float64, d int) (float64, int, error) {
	var sum float64
	extras := 0
	for _, i := range s {
		lp, extra, err := a.logFa(i, d)
		if err != nil {
			return 0, 0, err
		}
		if extra {
			extras++
		}
		sum += lp
	}
	return sum, extras, nil
}

// segmentProb is the probability that an ancestral segment at meiosis
// count d exceeds the minimum length threshold.
func (a *Ancestry) segmentProb(d int) float64 {
	return math.Exp(-float64(d) * a.bg.t / 100)
}

// logNa is the Poisson log probability of n ancestral segments at meiosis
// count d. The first-degree band substitutes the sibling-adjusted mean
// (eq. S1) and the avuncular band the fixed closed-form mean of the
// Li et al. 2014 correction; otherwise the generic mean applies.
func (a *Ancestry) logNa(n, d int) float64 {
	var lambda float64
	switch {
	case a.firstDegAdj && d == 2:
		lambda = (3.0/4.0)*float64(a.c) + 2*float64(d)*a.r*(3.0/4.0)*(1.0/4.0)
	case a.avuncularAdj && d == 3:
		lambda = (3.0/4.0)*a.r + (7.0/8.0)*float64(a.c)
	default:
		lambda = sharedAncestors * (a.r*float64(d) + float64(a.c)) * a.segmentProb(d) /
			math.Pow(2, float64(d-1))
	}
	return float64(n)*math.Log(lambda) - lambda - logFactorial(n)
}

// logLr is the alternative log-likelihood for a fixed split: the np
// shortest segments attributed to background, the rest to the recent
// ancestor at meiosis count d. Requires s sorted ascending.
func (a *Ancestry) logLr(np int, s []float64, d int) (float64, int, error) {
	sp, err := a.bg.logSp(s[:np])
	if err != nil {
		return 0, 0, err
	}
	sa, extras, err := a.logSa(s[np:], d)
	if err != nil {
		return 0, 0, err
	}
	ll := a.bg.logNp(np) + a.logNa(len(s)-np, d) + sp + sa
	return ll, extras, nil
}

// MLL maximises the alternative log-likelihood over every split of the n
// sorted segment lengths into background and ancestral subsets. The scan
// is exhaustive over np in [0, n]; ties keep the first maximum found
// scanning np ascending, which callers rely on for reproducibility.
func (a *Ancestry) MLL(n int, s []float64, d int) (np int, mll float64, extraParams int, err error) {
	first := true
	for cand := 0; cand <= n; cand++ {
		ll, extras, lerr := a.logLr(cand, s, d)
		if lerr != nil {
			return 0, 0, 0, lerr
		}
		if first || ll > mll {
			np, mll, extraParams = cand, ll, extras
			first = false
		}
	}
	return np, mll, extraParams, nil
}
