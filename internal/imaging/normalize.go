package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const (
	// TargetSize is the edge length the classifier was trained on.
	TargetSize = 224
	// Channels is the number of color channels fed to the model.
	Channels = 3
	// TensorLength is the flat input tensor size: 224*224*3.
	TensorLength = TargetSize * TargetSize * Channels
)

var (
	// ErrImageDecode reports a source image that could not be decoded.
	ErrImageDecode = errors.New("imaging: undecodable source image")
	// ErrEncoding reports a pixel buffer that violates the fixed-size
	// tensor contract.
	ErrEncoding = errors.New("imaging: pixel buffer size mismatch")
)

const jpegQuality = 90

// NormalizedImage is a 224x224 JPEG written to a temporary file.
// Callers must Close it once the tensor has been encoded.
type NormalizedImage struct {
	path string
}

func (n *NormalizedImage) Path() string {
	return n.path
}

// Close removes the backing temporary file.
func (n *NormalizedImage) Close() error {
	if err := os.Remove(n.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Normalize decodes an arbitrary-resolution source image and writes a
// JPEG stretched to exactly 224x224 into tempDir. Aspect ratio is not
// preserved: the model was trained on direct resizes, not crops.
func Normalize(src io.Reader, tempDir string) (*NormalizedImage, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	resized := resize.Resize(TargetSize, TargetSize, img, resize.Lanczos3)

	path := filepath.Join(tempDir, fmt.Sprintf("leaf_%s.jpg", uuid.New().String()))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp image: %w", err)
	}

	if err := jpeg.Encode(f, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to encode normalized image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write normalized image: %w", err)
	}

	return &NormalizedImage{path: path}, nil
}
