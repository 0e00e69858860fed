package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeastSquares(t *testing.T) {
	t.Run("recovers known coefficients", func(t *testing.T) {
		// y = 2 + 3*x
		predictors := [][]float64{{1}, {2}, {3}, {4}, {5}}
		response := []float64{5, 8, 11, 14, 17}

		coeffs, err := LeastSquares(predictors, response)
		require.NoError(t, err)
		require.Len(t, coeffs, 2)
		assert.InDelta(t, 2.0, coeffs[0], 1e-9)
		assert.InDelta(t, 3.0, coeffs[1], 1e-9)
	})

	t.Run("two predictors", func(t *testing.T) {
		// y = 1 + 2*x1 - 0.5*x2
		predictors := [][]float64{
			{1, 2}, {2, 1}, {3, 4}, {4, 0}, {5, 3}, {6, 2},
		}
		response := make([]float64, len(predictors))
		for i, row := range predictors {
			response[i] = 1 + 2*row[0] - 0.5*row[1]
		}

		coeffs, err := LeastSquares(predictors, response)
		require.NoError(t, err)
		require.Len(t, coeffs, 3)
		assert.InDelta(t, 1.0, coeffs[0], 1e-9)
		assert.InDelta(t, 2.0, coeffs[1], 1e-9)
		assert.InDelta(t, -0.5, coeffs[2], 1e-9)
	})

	t.Run("underdetermined system fails", func(t *testing.T) {
		predictors := [][]float64{{1, 2}}
		response := []float64{3}

		_, err := LeastSquares(predictors, response)
		assert.Error(t, err)
	})

	t.Run("mismatched lengths fail", func(t *testing.T) {
		_, err := LeastSquares([][]float64{{1}, {2}}, []float64{1})
		assert.Error(t, err)
	})

	t.Run("empty input fails", func(t *testing.T) {
		_, err := LeastSquares(nil, nil)
		assert.Error(t, err)
	})
}

func TestPredict(t *testing.T) {
	coeffs := []float64{2, 3, -1}
	assert.InDelta(t, 2+3*4-1*2, Predict(coeffs, []float64{4, 2}), 1e-12)
}
