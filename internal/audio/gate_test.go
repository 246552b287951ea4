package audio

import (
	"math"
	"testing"
)

func TestRMSEmpty(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}
	if got := RMS([]float32{}); got != 0 {
		t.Errorf("RMS([]) = %v, want 0", got)
	}
}

func TestRMSKnownValues(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		want    float64
	}{
		{"all zero", make([]float32, 1600), 0},
		{"constant half", []float32{0.5, 0.5, 0.5, 0.5}, 0.5},
		{"alternating full scale", []float32{1, -1, 1, -1}, 1},
		{"single sample", []float32{0.25}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RMS(tt.samples)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RMS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRMSLongBufferStable(t *testing.T) {
	// A long constant buffer must not drift from the exact value.
	samples := make([]float32, 16000*60)
	for i := range samples {
		samples[i] = 0.1
	}
	got := RMS(samples)
	if math.Abs(got-0.1) > 1e-6 {
		t.Errorf("RMS(long buffer) = %v, want 0.1", got)
	}
}

func TestGateAllZeroFailsAnyThreshold(t *testing.T) {
	silent := make([]float32, 16000)
	for _, threshold := range []float64{0.0001, 0.001, 0.01, 0.1, 0.5} {
		g := Gate{Threshold: threshold}
		if g.Pass(silent) {
			t.Errorf("Gate{%v}.Pass(all-zero) = true, want false", threshold)
		}
	}
}

func TestGateEmptyFails(t *testing.T) {
	g := Gate{Threshold: 0}
	if g.Pass(nil) {
		t.Error("Pass(nil) = true, want false")
	}
}

func TestGateLoudPasses(t *testing.T) {
	// 440Hz sine at 0.5 amplitude has RMS ~0.354.
	samples := sine(16000, 16000, 440, 0.5)
	g := Gate{Threshold: 0.01}
	if !g.Pass(samples) {
		t.Errorf("Pass(sine) = false, want true (RMS = %v)", RMS(samples))
	}
}

func TestGateQuietFails(t *testing.T) {
	samples := sine(16000, 16000, 440, 0.001)
	g := Gate{Threshold: 0.01}
	if g.Pass(samples) {
		t.Errorf("Pass(quiet sine) = true, want false (RMS = %v)", RMS(samples))
	}
}

// sine generates n samples of a sine wave for tests.
func sine(n, sampleRate int, freq, amplitude float64) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return samples
}
