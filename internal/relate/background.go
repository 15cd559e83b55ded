// Package relate implements the two-model relationship estimator: a
// population-background likelihood, a recent-common-ancestor likelihood
// with a profile split over segments, a discrete search over generations
// of separation, and the mapping from an accepted degree to relationship
// labels.
package relate

import (
	"errors"
	"fmt"
	"math"
)

// ErrBelowThreshold reports a segment length below the minimum threshold t.
var ErrBelowThreshold = errors.New("segment length below minimum threshold")

// Background is the null-hypothesis calculator: segment count is Poisson
// with mean lambda, and segment lengths follow an exponential tail over
// [t, inf) with population mean theta.
type Background struct {
	t      float64
	theta  float64
	lambda float64
}

// NewBackground builds the null model from the empirical population
// constants: minimum segment length t (cM), mean background segment length
// theta (cM), and mean background segment count lambda.
func NewBackground(t, theta, lambda float64) *Background {
	return &Background{t: t, theta: theta, lambda: lambda}
}

// logFp is the log density of one background segment length.
func (b *Background) logFp(i float64) (float64, error) {
	if i < b.t {
		return 0, fmt.Errorf("%w: %g < %g", ErrBelowThreshold, i, b.t)
	}
	return -(i-b.t)/(b.theta-b.t) - math.Log(b.theta-b.t), nil
}

// logSp sums logFp over a sorted length list.
func (b *Background) logSp(s []float64) (float64, error) {
	var sum float64
	for _, i := range s {
		lp, err := b.logFp(i)
		if err != nil {
			return 0, err
		}
		sum += lp
	}
	return sum, nil
}

// logNp is the Poisson log probability of observing n background segments.
func (b *Background) logNp(n int) float64 {
	return float64(n)*math.Log(b.lambda) - b.lambda - logFactorial(n)
}

// LL returns the background log-likelihood of n shared segments with
// lengths s. Every length must be at least t.
func (b *Background) LL(n int, s []float64) (float64, error) {
	sp, err := b.logSp(s)
	if err != nil {
		return 0, err
	}
	return b.logNp(n) + sp, nil
}

// logFactorial is ln(n!), with ln(0!) = 0 by definition.
func logFactorial(n int) float64 {
	lg, _ := math.Lgamma(float64(n) + 1)
	return lg
}
