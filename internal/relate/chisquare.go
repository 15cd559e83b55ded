package relate

import "gonum.org/v1/gonum/stat/distuv"

// chiSquaredSF is the chi-squared survival function (1 - CDF). df = 0
// degenerates to a point mass at zero: any positive statistic has
// survival 0.
func chiSquaredSF(x float64, df int) float64 {
	if x <= 0 {
		return 1
	}
	if df <= 0 {
		return 0
	}
	return distuv.ChiSquared{K: float64(df)}.Survival(x)
}

// lrTest performs a likelihood-ratio test of the alternative llr against
// the null lln using the standard statistic -2*lln + 2*llr compared to a
// chi-squared distribution with df degrees of freedom. It returns whether
// the null is rejected at significance alpha, and the p-value.
func lrTest(llr, lln float64, df int, alpha float64) (bool, float64) {
	ratio := -2*lln + 2*llr
	p := chiSquaredSF(ratio, df)
	return p < alpha, p
}

// likelihoodRatioCI scans the per-degree likelihood profile and returns
// the range of degrees statistically indistinguishable from the maximum
// model at significance alpha (chi-squared, df degrees of freedom).
func likelihoodRatioCI(alts []AltModel, maxLL float64, df int, alpha float64) (lower, upper int, ok bool) {
	for _, alt := range alts {
		if reject, _ := lrTest(maxLL, alt.LL, df, alpha); reject {
			continue
		}
		if !ok {
			lower, upper, ok = alt.D, alt.D, true
			continue
		}
		if alt.D < lower {
			lower = alt.D
		}
		if alt.D > upper {
			upper = alt.D
		}
	}
	return lower, upper, ok
}
