package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	scigoErrors "github.com/ezoic/minwls/pkg/errors"
)

const (
	// pinvRcond matches the usual pseudoinverse cutoff relative to the
	// largest singular value.
	pinvRcond = 1e-15
	// qrSingularTol is the relative size below which a diagonal entry of R
	// marks the factor as singular.
	qrSingularTol = 1e-12
	// eps is the float64 machine epsilon.
	eps = 0x1p-52
)

var errSVDFailed = scigoErrors.New("SVD did not converge")

// solvePinv computes params = pinv(wX)·wy and pinv(wX)·pinv(wX)ᵀ.
func solvePinv(wexog *mat.Dense, wendog *mat.VecDense, cfg fitConfig) (*mat.VecDense, *mat.Dense, error) {
	rcond := cfg.rcond
	if rcond < 0 {
		rcond = pinvRcond
	}
	pinv, err := pseudoInverse(wexog, rcond)
	if err != nil {
		return nil, nil, err
	}

	k, _ := pinv.Dims()
	params := mat.NewVecDense(k, nil)
	params.MulVec(pinv, wendog)

	var normCov *mat.Dense
	if cfg.cov {
		normCov = mat.NewDense(k, k, nil)
		normCov.Mul(pinv, pinv.T())
	}
	return params, normCov, nil
}

// pseudoInverse returns the Moore-Penrose inverse of a from its thin SVD,
// zeroing singular values at or below rcond times the largest.
func pseudoInverse(a mat.Matrix, rcond float64) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, scigoErrors.NewLinAlgError("pinv", errSVDFailed)
	}
	s := svd.Values(nil)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := 0.0
	if len(s) > 0 {
		cutoff = rcond * s[0]
	}
	inv := make([]float64, len(s))
	for i, sv := range s {
		if sv > cutoff {
			inv[i] = 1 / sv
		}
	}
	v.Apply(func(_, j int, x float64) float64 { return x * inv[j] }, &v)

	n, k := a.Dims()
	pinv := mat.NewDense(k, n, nil)
	pinv.Mul(&v, u.T())
	return pinv, nil
}

// solveQR factors wX = QR and solves R·params = Qᵀ·wy by applying the
// Householder reflectors to wy, so Q is never formed. R is read for the
// singularity check and the (RᵀR)⁻¹ normalized covariance.
func solveQR(wexog *mat.Dense, wendog *mat.VecDense, cfg fitConfig) (*mat.VecDense, *mat.Dense, error) {
	n, k := wexog.Dims()
	if n < k {
		// R would not be square.
		return nil, nil, scigoErrors.NewLinAlgError("qr", mat.ErrShape)
	}

	var qr mat.QR
	qr.Factorize(wexog)
	var r mat.Dense
	qr.RTo(&r)

	tri := mat.NewTriDense(k, mat.Upper, nil)
	maxDiag := 0.0
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			tri.SetTri(i, j, r.At(i, j))
		}
		maxDiag = math.Max(maxDiag, math.Abs(r.At(i, i)))
	}
	for i := 0; i < k; i++ {
		if math.Abs(tri.At(i, i)) <= qrSingularTol*maxDiag {
			return nil, nil, scigoErrors.NewLinAlgError("qr", scigoErrors.ErrSingularMatrix)
		}
	}

	params := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(params, false, wendog); err != nil {
		return nil, nil, scigoErrors.NewLinAlgError("qr", err)
	}

	var normCov *mat.Dense
	if cfg.cov {
		var rtr mat.Dense
		rtr.Mul(tri.T(), tri)
		normCov = mat.NewDense(k, k, nil)
		if err := normCov.Inverse(&rtr); err != nil {
			return nil, nil, scigoErrors.NewLinAlgError("qr", err)
		}
	}
	return params, normCov, nil
}

// solveLstsq computes the minimum-norm least squares solution through an
// SVD truncated at rank(wX). The covariance is (wXᵀwX)⁻¹ regardless of the
// rank found by the solve: with a rank-deficient design the parameters are
// well defined but the requested covariance is an ill-posed inverse, and
// whatever the inverse reports is returned.
func solveLstsq(wexog *mat.Dense, wendog *mat.VecDense, cfg fitConfig) (*mat.VecDense, *mat.Dense, error) {
	n, k := wexog.Dims()
	rcond := cfg.rcond
	if rcond < 0 {
		rcond = eps * float64(max(n, k))
	}

	var svd mat.SVD
	if !svd.Factorize(wexog, mat.SVDThin) {
		return nil, nil, scigoErrors.NewLinAlgError("lstsq", errSVDFailed)
	}
	rank := svd.Rank(rcond)
	params := mat.NewVecDense(k, nil)
	if rank > 0 {
		svd.SolveVecTo(params, wendog, rank)
	}

	normCov, err := lstsqCov(wexog, cfg)
	if err != nil {
		return nil, nil, err
	}
	return params, normCov, nil
}

func lstsqCov(wexog *mat.Dense, cfg fitConfig) (*mat.Dense, error) {
	if !cfg.cov {
		return nil, nil
	}
	_, k := wexog.Dims()
	var gram mat.Dense
	gram.Mul(wexog.T(), wexog)
	normCov := mat.NewDense(k, k, nil)
	if err := normCov.Inverse(&gram); err != nil {
		return nil, scigoErrors.NewLinAlgError("lstsq", err)
	}
	return normCov, nil
}
