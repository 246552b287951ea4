// Package embed provides the speaker-embedding provider backed by an
// ONNX model. Given a speech segment it returns a fixed-length vector
// characterizing the speaker's voice.
package embed

import (
	"context"
	"fmt"
	"sync"

	onnx "github.com/yalue/onnxruntime_go"
	"go.uber.org/multierr"
)

// OnnxConfig holds settings for the ONNX embedding model.
type OnnxConfig struct {
	// LibraryPath is the path to the onnxruntime shared library.
	// Empty means the runtime's default lookup.
	LibraryPath string
	// ModelPath is the path to the speaker-embedding .onnx model.
	ModelPath string
	// Dim is the embedding dimensionality the model produces.
	Dim int
	// SampleRate is the audio rate the model was trained on. Input at
	// any other rate is resampled before inference.
	SampleRate int
}

// DefaultOnnxConfig returns an OnnxConfig with default values.
func DefaultOnnxConfig() OnnxConfig {
	return OnnxConfig{
		Dim:        256,
		SampleRate: 16000,
	}
}

// OnnxEmbedder computes speaker embeddings with an ONNX model session.
// The runtime environment and session options are initialized once, on
// first use, and reused for every call. Safe for concurrent use.
type OnnxEmbedder struct {
	cfg OnnxConfig

	initOnce   sync.Once
	initErr    error
	options    *onnx.SessionOptions
	inputInfo  []onnx.InputOutputInfo
	outputInfo []onnx.InputOutputInfo
}

// NewOnnxEmbedder creates an embedder for the given model. The model is
// not loaded until the first Embed call. Call Close() when done.
func NewOnnxEmbedder(cfg OnnxConfig) *OnnxEmbedder {
	if cfg.Dim == 0 {
		cfg.Dim = DefaultOnnxConfig().Dim
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultOnnxConfig().SampleRate
	}
	return &OnnxEmbedder{cfg: cfg}
}

// Dim returns the embedding dimensionality.
func (e *OnnxEmbedder) Dim() int {
	return e.cfg.Dim
}

func (e *OnnxEmbedder) init() {
	if e.cfg.LibraryPath != "" {
		onnx.SetSharedLibraryPath(e.cfg.LibraryPath)
	}
	if err := onnx.InitializeEnvironment(); err != nil {
		e.initErr = fmt.Errorf("embed: initializing onnx runtime: %w", err)
		return
	}

	inputs, outputs, err := onnx.GetInputOutputInfo(e.cfg.ModelPath)
	if err != nil {
		e.initErr = fmt.Errorf("embed: reading model info for %s: %w", e.cfg.ModelPath, err)
		return
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		e.initErr = fmt.Errorf("embed: model %s has no inputs or outputs", e.cfg.ModelPath)
		return
	}

	options, err := onnx.NewSessionOptions()
	if err != nil {
		e.initErr = fmt.Errorf("embed: creating session options: %w", err)
		return
	}

	e.inputInfo = inputs
	e.outputInfo = outputs
	e.options = options
}

// Embed runs the model over the samples and returns the embedding vector.
// Audio at a rate other than the model's is resampled internally.
func (e *OnnxEmbedder) Embed(ctx context.Context, samples []float32, sampleRate int) (vec []float32, err error) {
	e.initOnce.Do(e.init)
	if e.initErr != nil {
		return nil, e.initErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("embed: empty audio segment")
	}

	if sampleRate != e.cfg.SampleRate {
		samples, err = resample(samples, sampleRate, e.cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("embed: resampling %dHz to %dHz: %w", sampleRate, e.cfg.SampleRate, err)
		}
	}

	input, err := onnx.NewTensor(onnx.NewShape(1, int64(len(samples))), samples)
	if err != nil {
		return nil, fmt.Errorf("embed: creating input tensor: %w", err)
	}
	defer func() {
		err = multierr.Combine(err, input.Destroy())
	}()

	output, err := onnx.NewEmptyTensor[float32](onnx.NewShape(1, int64(e.cfg.Dim)))
	if err != nil {
		return nil, fmt.Errorf("embed: creating output tensor: %w", err)
	}
	defer func() {
		err = multierr.Combine(err, output.Destroy())
	}()

	session, err := onnx.NewAdvancedSession(
		e.cfg.ModelPath,
		[]string{e.inputInfo[0].Name},
		[]string{e.outputInfo[0].Name},
		[]onnx.ArbitraryTensor{input},
		[]onnx.ArbitraryTensor{output},
		e.options,
	)
	if err != nil {
		return nil, fmt.Errorf("embed: creating onnx session: %w", err)
	}
	defer func() {
		err = multierr.Combine(err, session.Destroy())
	}()

	if err := session.Run(); err != nil {
		return nil, fmt.Errorf("embed: running model: %w", err)
	}

	data := output.GetData()
	vec = make([]float32, len(data))
	copy(vec, data)
	return vec, nil
}

// Close releases the onnx session options and runtime environment.
func (e *OnnxEmbedder) Close() error {
	if e.options == nil {
		return nil
	}
	return multierr.Combine(e.options.Destroy(), onnx.DestroyEnvironment())
}
