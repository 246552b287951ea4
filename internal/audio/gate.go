package audio

import "math"

// RMS computes the root-mean-square energy of normalized float32 samples.
// Squares are accumulated in float64 so long buffers don't lose precision.
// An empty buffer has energy 0.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		f := float64(v)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Gate is an energy prefilter that rejects silent or too-quiet segments
// before any embedding inference runs. Energy computation is orders of
// magnitude cheaper than inference, and most segments from an always-on
// capture are silence.
type Gate struct {
	// Threshold is the minimum RMS energy a segment needs to pass.
	Threshold float64
}

// Pass reports whether the samples carry enough energy to continue the
// pipeline. Empty buffers always fail.
func (g Gate) Pass(samples []float32) bool {
	if len(samples) == 0 {
		return false
	}
	return RMS(samples) >= g.Threshold
}
