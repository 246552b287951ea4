// Package audio provides the audio segment type shared across the
// verification pipeline, the RMS amplitude gate, sample file decoding,
// and live microphone capture.
package audio

// Segment is a chunk of mono audio as normalized float32 samples in [-1, 1].
type Segment struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}
