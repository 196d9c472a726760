package classify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/agrovision/riceleaf-api/internal/imaging"

	"go.uber.org/zap"
)

// Runner executes the classifier over an encoded input tensor.
// *model.Runtime is the production implementation.
type Runner interface {
	Run(tensor []float32) ([]float32, error)
	Labels() []string
}

// Service runs the full inference pipeline for one request: decode and
// normalize the source image, encode the tensor, execute the model,
// interpret the scores. Each request is stateless and self-contained;
// cancelling the context between stages discards the request with
// nothing to unwind.
type Service struct {
	runner  Runner
	tempDir string
	log     *zap.Logger
}

func NewService(runner Runner, tempDir string, log *zap.Logger) *Service {
	return &Service{runner: runner, tempDir: tempDir, log: log}
}

func (s *Service) Classify(ctx context.Context, src io.Reader) (Diagnosis, error) {
	norm, err := imaging.Normalize(src, s.tempDir)
	if err != nil {
		return Diagnosis{}, err
	}
	defer func() {
		if err := norm.Close(); err != nil {
			s.log.Warn("failed to remove temp image", zap.String("path", norm.Path()), zap.Error(err))
		}
	}()

	if err := ctx.Err(); err != nil {
		return Diagnosis{}, err
	}

	tensor, err := imaging.EncodeTensor(norm)
	if err != nil {
		return Diagnosis{}, err
	}

	if err := ctx.Err(); err != nil {
		return Diagnosis{}, err
	}

	scores, err := s.runner.Run(tensor)
	if err != nil {
		return Diagnosis{}, err
	}

	return Interpret(scores, s.runner.Labels())
}

// ClassifyFile runs the pipeline over an image referenced by path.
// The source file is read-only and owned by the caller.
func (s *Service) ClassifyFile(ctx context.Context, path string) (Diagnosis, error) {
	f, err := os.Open(path)
	if err != nil {
		return Diagnosis{}, fmt.Errorf("failed to open source image: %w", err)
	}
	defer f.Close()

	return s.Classify(ctx, f)
}
