package model

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

var (
	// ErrModelLoad reports a missing or malformed model artifact.
	// Inference stays unavailable for the rest of the process lifetime.
	ErrModelLoad = errors.New("model: failed to load artifact")
	// ErrNotReady reports an inference request issued before the
	// runtime finished loading, or after loading failed.
	ErrNotReady = errors.New("model: runtime is not ready")
	// ErrInference reports a failed forward pass or a tensor that does
	// not match the model's declared input shape.
	ErrInference = errors.New("model: inference failed")
)

// State is the runtime lifecycle: Uninitialized -> Loading -> Ready,
// or Loading -> Failed (terminal).
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "load-failed"
	default:
		return "unknown"
	}
}

// Runtime owns the ONNX session and its pre-allocated input/output
// tensors. The session and tensors are shared across requests, so Run
// holds a mutex for the duration of a forward pass; at most one
// inference is in flight at a time.
type Runtime struct {
	state atomic.Int32

	mu           sync.Mutex
	meta         Metadata
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]

	log *zap.Logger
}

func NewRuntime(log *zap.Logger) *Runtime {
	return &Runtime{log: log}
}

func (r *Runtime) State() State {
	return State(r.state.Load())
}

// Metadata returns the loaded model metadata. It is only meaningful
// once State reports StateReady.
func (r *Runtime) Metadata() Metadata {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta
}

// Labels returns the class vocabulary in model index order, or nil
// until the runtime is ready.
func (r *Runtime) Labels() []string {
	return r.Metadata().Classes
}

// Load reads the metadata file, validates it, and builds the ONNX
// session. It runs at most once per process; a second call is an
// error regardless of the first call's outcome.
func (r *Runtime) Load(modelPath, metadataPath string) error {
	if !r.state.CompareAndSwap(int32(StateUninitialized), int32(StateLoading)) {
		return fmt.Errorf("%w: runtime already %s", ErrModelLoad, r.State())
	}

	if err := r.load(modelPath, metadataPath); err != nil {
		r.state.Store(int32(StateFailed))
		r.log.Error("model load failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	r.state.Store(int32(StateReady))
	r.log.Info("model loaded",
		zap.String("path", modelPath),
		zap.String("version", r.meta.Version),
		zap.Strings("classes", r.meta.Classes))
	return nil
}

func (r *Runtime) load(modelPath, metadataPath string) error {
	meta, err := LoadMetadata(metadataPath)
	if err != nil {
		return err
	}
	if err := meta.Validate(); err != nil {
		return err
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return fmt.Errorf("failed to create ONNX session: %w", err)
	}

	r.mu.Lock()
	r.meta = meta
	r.session = session
	r.inputTensor = inputTensor
	r.outputTensor = outputTensor
	r.mu.Unlock()

	return nil
}

// Run executes one forward pass and returns a copy of the per-class
// scores. The returned slice is owned by the caller.
func (r *Runtime) Run(tensor []float32) ([]float32, error) {
	if r.State() != StateReady {
		return nil, fmt.Errorf("%w: state is %s", ErrNotReady, r.State())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if want := r.meta.InputLength(); len(tensor) != want {
		return nil, fmt.Errorf("%w: tensor has %d values, model expects %d",
			ErrInference, len(tensor), want)
	}

	copy(r.inputTensor.GetData(), tensor)

	if err := r.session.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	out := r.outputTensor.GetData()
	scores := make([]float32, len(out))
	copy(scores, out)
	return scores, nil
}

func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inputTensor != nil {
		r.inputTensor.Destroy()
	}
	if r.outputTensor != nil {
		r.outputTensor.Destroy()
	}
	if r.session != nil {
		r.session.Destroy()
		ort.DestroyEnvironment()
	}
}
