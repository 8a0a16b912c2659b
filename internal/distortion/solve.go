package distortion

import "math"

// solveLeastSquares solves A·x ≈ y through the normal equations AᵀA·x = Aᵀy.
func solveLeastSquares(matA [][]float64, vecY []float64) []float64 {
	numSamples := len(matA)
	if numSamples == 0 {
		return nil
	}
	numCoefficients := len(matA[0])

	matATA := make([][]float64, numCoefficients)
	for k := range matATA {
		matATA[k] = make([]float64, numCoefficients)
		for j := 0; j < numCoefficients; j++ {
			var sum float64
			for i := 0; i < numSamples; i++ {
				sum += matA[i][j] * matA[i][k]
			}
			matATA[k][j] = sum
		}
	}

	vecATY := make([]float64, numCoefficients)
	for j := range vecATY {
		var sum float64
		for i := 0; i < numSamples; i++ {
			sum += matA[i][j] * vecY[i]
		}
		vecATY[j] = sum
	}

	return solveLinear(matATA, vecATY)
}

// solveLinear solves the square system a·x = y by Gaussian elimination with
// partial pivoting. a and y are overwritten. A singular system produces
// non-finite results.
func solveLinear(a [][]float64, y []float64) []float64 {
	n := len(y)

	for j := 0; j < n; j++ {
		// Partial pivot: largest magnitude in column j at or below row j
		pivot := j
		for i := j + 1; i < n; i++ {
			if math.Abs(a[i][j]) > math.Abs(a[pivot][j]) {
				pivot = i
			}
		}
		a[j], a[pivot] = a[pivot], a[j]
		y[j], y[pivot] = y[pivot], y[j]

		for i := j + 1; i < n; i++ {
			f := a[i][j] / a[j][j]
			for k := j; k < n; k++ {
				a[i][k] -= f * a[j][k]
			}
			y[i] -= f * y[j]
		}
	}

	// Back substitution
	x := make([]float64, n)
	for j := n - 1; j >= 0; j-- {
		v := y[j]
		for k := j + 1; k < n; k++ {
			v -= a[j][k] * x[k]
		}
		x[j] = v / a[j][j]
	}
	return x
}
