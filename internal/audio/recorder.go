package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// Recorder captures audio from the default microphone and emits
// fixed-duration segments on a channel. It is the reference segment
// source for the verification pipeline.
type Recorder struct {
	ctx           *malgo.AllocatedContext
	device        *malgo.Device
	sampleRate    uint32
	channels      uint32
	segmentFrames int

	segments chan Segment

	mu        sync.Mutex
	buf       []float32
	capturing bool
	dropped   uint64
}

// NewRecorder creates a new segmenting recorder. segmentSeconds is the
// duration of each emitted segment. Call Close() when done.
func NewRecorder(sampleRate, channels uint32, segmentSeconds float64) (*Recorder, error) {
	if segmentSeconds <= 0 {
		return nil, fmt.Errorf("segment duration must be > 0, got %v", segmentSeconds)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}

	return &Recorder{
		ctx:           ctx,
		sampleRate:    sampleRate,
		channels:      channels,
		segmentFrames: int(float64(sampleRate) * segmentSeconds),
		segments:      make(chan Segment, 8),
	}, nil
}

// Segments returns the channel on which captured segments are delivered.
// If the consumer falls behind, segments are dropped rather than blocking
// the capture callback.
func (r *Recorder) Segments() <-chan Segment {
	return r.segments
}

// Start begins capturing audio from the default microphone.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.capturing {
		r.mu.Unlock()
		return fmt.Errorf("already capturing")
	}
	r.buf = r.buf[:0] // reset buffer but keep capacity
	r.capturing = true
	r.mu.Unlock()

	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatF32
	deviceCfg.Capture.Channels = r.channels
	deviceCfg.SampleRate = r.sampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: r.onData,
	}

	device, err := malgo.InitDevice(r.ctx.Context, deviceCfg, callbacks)
	if err != nil {
		r.mu.Lock()
		r.capturing = false
		r.mu.Unlock()
		return fmt.Errorf("initializing capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		r.mu.Lock()
		r.capturing = false
		r.mu.Unlock()
		return fmt.Errorf("starting capture device: %w", err)
	}

	r.mu.Lock()
	r.device = device
	r.mu.Unlock()

	return nil
}

// Stop ends the capture. Buffered but incomplete segment audio is discarded.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.capturing {
		return
	}

	if r.device != nil {
		r.device.Uninit()
		r.device = nil
	}
	r.capturing = false
	r.buf = r.buf[:0]
}

// IsCapturing returns whether the recorder is currently capturing audio.
func (r *Recorder) IsCapturing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capturing
}

// Dropped returns the number of segments discarded because the consumer
// was not keeping up.
func (r *Recorder) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close releases all audio resources and closes the segment channel.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.device != nil {
		r.device.Uninit()
		r.device = nil
	}
	r.capturing = false
	r.mu.Unlock()

	close(r.segments)

	if r.ctx != nil {
		if err := r.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninitializing audio context: %w", err)
		}
		r.ctx.Free()
	}

	return nil
}

// onData is the malgo callback invoked when audio data is available.
// pSample contains the captured audio frames as raw bytes (float32 format).
func (r *Recorder) onData(_, pSample []byte, frameCount uint32) {
	sampleCount := frameCount * r.channels
	samples := bytesToFloat32(pSample, sampleCount)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf = append(r.buf, samples...)
	for len(r.buf) >= r.segmentFrames {
		seg := Segment{
			Samples:    make([]float32, r.segmentFrames),
			SampleRate: int(r.sampleRate),
		}
		copy(seg.Samples, r.buf[:r.segmentFrames])
		r.buf = r.buf[r.segmentFrames:]

		select {
		case r.segments <- seg:
		default:
			r.dropped++
		}
	}
}

// bytesToFloat32 converts raw bytes (little-endian float32) to a float32 slice.
func bytesToFloat32(data []byte, sampleCount uint32) []float32 {
	samples := make([]float32, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		offset := i * 4
		if offset+4 > uint32(len(data)) {
			break
		}
		bits := binary.LittleEndian.Uint32(data[offset : offset+4])
		samples = append(samples, math.Float32frombits(bits))
	}
	return samples
}
