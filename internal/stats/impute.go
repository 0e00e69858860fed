package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// NormPredict fills NaN cells of a column-oriented table by single
// OLS imputation: for each column with missing values, the remaining
// columns act as predictors and complete rows as the training set.
// When fewer than three complete training rows exist, or a row misses
// a predictor, the column mean is used instead. Columns that are
// entirely missing stay NaN.
func NormPredict(columns [][]float64) [][]float64 {
	if len(columns) == 0 {
		return columns
	}

	nRows := len(columns[0])
	out := make([][]float64, len(columns))
	for j, col := range columns {
		out[j] = append([]float64(nil), col...)
	}

	for target := range out {
		var missing []int
		for i := 0; i < nRows; i++ {
			if math.IsNaN(out[target][i]) {
				missing = append(missing, i)
			}
		}
		if len(missing) == 0 {
			continue
		}

		predictors := otherColumns(out, target)

		var trainX [][]float64
		var trainY []float64
		for i := 0; i < nRows; i++ {
			if math.IsNaN(out[target][i]) {
				continue
			}
			row, ok := predictorRow(predictors, i)
			if !ok {
				continue
			}
			trainX = append(trainX, row)
			trainY = append(trainY, out[target][i])
		}

		mean := columnMean(out[target])

		if len(trainX) < 3 || len(predictors) == 0 {
			fillWith(out[target], missing, mean)
			continue
		}

		coeffs, err := LeastSquares(trainX, trainY)
		if err != nil {
			fillWith(out[target], missing, mean)
			continue
		}

		for _, i := range missing {
			row, ok := predictorRow(predictors, i)
			if ok {
				out[target][i] = Predict(coeffs, row)
			} else {
				out[target][i] = mean
			}
		}
	}

	return out
}

func otherColumns(columns [][]float64, skip int) [][]float64 {
	var rest [][]float64
	for j, col := range columns {
		if j != skip {
			rest = append(rest, col)
		}
	}
	return rest
}

func predictorRow(predictors [][]float64, i int) ([]float64, bool) {
	row := make([]float64, len(predictors))
	for j, col := range predictors {
		if math.IsNaN(col[i]) {
			return nil, false
		}
		row[j] = col[i]
	}
	return row, true
}

func columnMean(col []float64) float64 {
	var present []float64
	for _, v := range col {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN()
	}
	return stat.Mean(present, nil)
}

func fillWith(col []float64, indices []int, value float64) {
	for _, i := range indices {
		col[i] = value
	}
}
