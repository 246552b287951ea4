package speaker

import "gonum.org/v1/gonum/floats"

// zeroNormEpsilon guards the cosine division: vectors with a magnitude
// below it are treated as zero and score 0.0 instead of dividing by zero.
const zeroNormEpsilon = 1e-10

// CosineSimilarity returns the cosine of the angle between two vectors,
// in [-1, 1]. It is scale-invariant, so recording-volume differences
// between enrollment and live capture do not move the score. Mismatched
// lengths and effectively-zero vectors score 0.0; the result is never NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	x := make([]float64, len(a))
	y := make([]float64, len(b))
	for i := range a {
		x[i] = float64(a[i])
		y[i] = float64(b[i])
	}

	normX := floats.Norm(x, 2)
	normY := floats.Norm(y, 2)
	if normX < zeroNormEpsilon || normY < zeroNormEpsilon {
		return 0
	}

	return floats.Dot(x, y) / (normX * normY)
}
