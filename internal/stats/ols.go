package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LeastSquares fits y = b0 + b1*x1 + ... + bk*xk by ordinary least squares
// and returns the coefficients, intercept first. Rows containing non-finite
// values must be filtered by the caller.
func LeastSquares(predictors [][]float64, response []float64) ([]float64, error) {
	n := len(response)
	if n == 0 || len(predictors) != n {
		return nil, fmt.Errorf("least squares: %d predictor rows for %d responses", len(predictors), n)
	}

	k := len(predictors[0])
	if n < k+1 {
		return nil, fmt.Errorf("least squares: %d observations for %d coefficients", n, k+1)
	}

	design := mat.NewDense(n, k+1, nil)
	for i, row := range predictors {
		if len(row) != k {
			return nil, fmt.Errorf("least squares: ragged predictor row %d", i)
		}
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}

	var beta mat.Dense
	if err := beta.Solve(design, mat.NewVecDense(n, response)); err != nil {
		return nil, fmt.Errorf("least squares solve failed: %w", err)
	}

	coeffs := make([]float64, k+1)
	for j := range coeffs {
		coeffs[j] = beta.At(j, 0)
	}
	for _, c := range coeffs {
		if !isFinite(c) {
			return nil, fmt.Errorf("least squares produced non-finite coefficient")
		}
	}
	return coeffs, nil
}

// Predict evaluates a fitted coefficient vector (intercept first) at x.
func Predict(coeffs []float64, x []float64) float64 {
	y := coeffs[0]
	for j, v := range x {
		y += coeffs[j+1] * v
	}
	return y
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
