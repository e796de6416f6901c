// Package regression fits ordinary least squares models with
// heteroscedasticity-robust (HC1) standard errors.
package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/stitts-dev/salary-panel/pkg/utils"
)

// ConstTerm is the name of the intercept column
const ConstTerm = "const"

// CovHC1 labels the covariance estimator in summaries
const CovHC1 = "HC1"

// pinvRcond matches numpy's pinv cutoff relative to the largest singular value
const pinvRcond = 1e-15

// Result is a fitted model. Undefined statistics are NaN.
type Result struct {
	ModelName    string
	DependentVar string
	Terms        []string

	Params    []float64
	StdErrors []float64
	ZValues   []float64
	PValues   []float64
	ConfLower []float64
	ConfUpper []float64

	NObs          int
	Rank          int
	DfModel       float64
	DfResid       float64
	RSquared      float64
	AdjRSquared   float64
	FStatistic    float64
	FPValue       float64
	LogLikelihood float64
	AIC           float64
	BIC           float64
	CovType       string

	// rows dropped before fitting
	DroppedMissingLabel int
	DroppedMissing      int
}

// FitOLS regresses y on x, whose first column must be the intercept. The
// solution uses the Moore-Penrose pseudo-inverse, so collinear designs give
// the minimum-norm coefficients instead of failing.
func FitOLS(x *mat.Dense, y []float64, terms []string) (*Result, error) {
	n, k := x.Dims()
	if len(y) != n {
		return nil, fmt.Errorf("design has %d rows but label has %d", n, len(y))
	}
	if len(terms) != k {
		return nil, fmt.Errorf("design has %d columns but %d term names", k, len(terms))
	}

	pinv, rank, err := pseudoInverse(x)
	if err != nil {
		return nil, err
	}
	if n <= rank {
		return nil, fmt.Errorf("%w: %d observations for %d independent columns", utils.ErrInsufficientRows, n, rank)
	}

	yVec := mat.NewVecDense(n, append([]float64(nil), y...))

	var beta mat.VecDense
	beta.MulVec(pinv, yVec)

	var fitted, resid mat.VecDense
	fitted.MulVec(x, &beta)
	resid.SubVec(yVec, &fitted)

	res := &Result{
		Terms:   append([]string(nil), terms...),
		Params:  make([]float64, k),
		NObs:    n,
		Rank:    rank,
		DfModel: float64(rank - 1),
		DfResid: float64(n - rank),
		CovType: CovHC1,
	}
	for i := 0; i < k; i++ {
		res.Params[i] = beta.AtVec(i)
	}

	cov := hc1Covariance(pinv, resid.RawVector().Data, res.DfResid)
	res.fillInference(cov)
	res.fillFit(y, resid.RawVector().Data)
	res.fillWaldF(cov)

	return res, nil
}

// pseudoInverse returns the Moore-Penrose inverse of a and its numerical rank.
func pseudoInverse(a mat.Matrix) (*mat.Dense, int, error) {
	r, c := a.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, 0, fmt.Errorf("singular value decomposition did not converge")
	}
	values := svd.Values(nil)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := 0.0
	if len(values) > 0 {
		cutoff = pinvRcond * floats.Max(values)
	}

	rank := 0
	scaled := mat.DenseCopyOf(&v)
	for j, s := range values {
		inv := 0.0
		if s > cutoff {
			inv = 1 / s
			rank++
		}
		col := mat.Col(nil, j, scaled)
		floats.Scale(inv, col)
		scaled.SetCol(j, col)
	}

	pinv := mat.NewDense(c, r, nil)
	pinv.Mul(scaled, u.T())
	return pinv, rank, nil
}

// hc1Covariance computes n/(n-rank) * pinv diag(e^2) pinv'.
func hc1Covariance(pinv *mat.Dense, resid []float64, dfResid float64) *mat.Dense {
	k, n := pinv.Dims()

	weighted := mat.DenseCopyOf(pinv)
	for j := 0; j < n; j++ {
		col := mat.Col(nil, j, weighted)
		floats.Scale(resid[j], col)
		weighted.SetCol(j, col)
	}

	cov := mat.NewDense(k, k, nil)
	cov.Mul(weighted, weighted.T())
	cov.Scale(float64(n)/dfResid, cov)
	return cov
}

func (r *Result) fillInference(cov *mat.Dense) {
	k := len(r.Params)
	r.StdErrors = make([]float64, k)
	r.ZValues = make([]float64, k)
	r.PValues = make([]float64, k)
	r.ConfLower = make([]float64, k)
	r.ConfUpper = make([]float64, k)

	crit := distuv.UnitNormal.Quantile(0.975)
	for i := 0; i < k; i++ {
		se := math.Sqrt(cov.At(i, i))
		z := r.Params[i] / se
		r.StdErrors[i] = se
		r.ZValues[i] = z
		r.PValues[i] = 2 * distuv.UnitNormal.Survival(math.Abs(z))
		r.ConfLower[i] = r.Params[i] - crit*se
		r.ConfUpper[i] = r.Params[i] + crit*se
	}
}

func (r *Result) fillFit(y, resid []float64) {
	n := float64(r.NObs)
	ssr := floats.Dot(resid, resid)

	mean := stat.Mean(y, nil)
	tss := 0.0
	for _, v := range y {
		tss += (v - mean) * (v - mean)
	}

	r.RSquared = 1 - ssr/tss
	r.AdjRSquared = 1 - (n-1)/r.DfResid*(1-r.RSquared)

	half := n / 2
	r.LogLikelihood = -half*math.Log(2*math.Pi) - half*math.Log(ssr/n) - half
	r.AIC = -2*r.LogLikelihood + 2*float64(r.Rank)
	r.BIC = -2*r.LogLikelihood + math.Log(n)*float64(r.Rank)
}

// fillWaldF tests that every non-intercept coefficient is zero using the
// robust covariance.
func (r *Result) fillWaldF(cov *mat.Dense) {
	r.FStatistic = math.NaN()
	r.FPValue = math.NaN()

	k := len(r.Params)
	q := k - 1
	if q < 1 || r.DfModel < 1 {
		return
	}

	sub := mat.NewDense(q, q, nil)
	for i := 0; i < q; i++ {
		for j := 0; j < q; j++ {
			sub.Set(i, j, cov.At(i+1, j+1))
		}
	}
	inv, _, err := pseudoInverse(sub)
	if err != nil {
		return
	}

	b := mat.NewVecDense(q, append([]float64(nil), r.Params[1:]...))
	var tmp mat.VecDense
	tmp.MulVec(inv, b)
	quad := mat.Dot(b, &tmp)

	r.FStatistic = quad / float64(q)
	r.FPValue = distuv.F{D1: r.DfModel, D2: r.DfResid}.Survival(r.FStatistic)
}

// Coefficient returns the estimate for term, or false when absent.
func (r *Result) Coefficient(term string) (float64, bool) {
	for i, t := range r.Terms {
		if t == term {
			return r.Params[i], true
		}
	}
	return 0, false
}
