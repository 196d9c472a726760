package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

func pngReader(t *testing.T, img image.Image) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestNormalizeYields224(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 50, 30))
	for i := range src.Pix {
		src.Pix[i] = byte(i * 7)
	}

	norm, err := Normalize(pngReader(t, src), t.TempDir())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	defer norm.Close()

	f, err := os.Open(norm.Path())
	if err != nil {
		t.Fatalf("failed to open normalized image: %v", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode normalized image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	if img.Bounds().Dx() != TargetSize || img.Bounds().Dy() != TargetSize {
		t.Errorf("expected %dx%d, got %dx%d",
			TargetSize, TargetSize, img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestNormalizeCloseRemovesTempFile(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	norm, err := Normalize(pngReader(t, src), t.TempDir())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if err := norm.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(norm.Path()); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after Close")
	}
	// Closing twice must not fail.
	if err := norm.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize(bytes.NewReader([]byte("not an image")), t.TempDir())
	if !errors.Is(err, ErrImageDecode) {
		t.Fatalf("expected ErrImageDecode, got %v", err)
	}
}

// TestTensorInterleave pins the R,G,B row-major interleave contract
// against a 2x2 grid with known per-pixel colors.
func TestTensorInterleave(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 70, G: 80, B: 90, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 100, G: 110, B: 120, A: 255})

	tensor := tensorFromBuffer(pixelBuffer(img))

	want := []float32{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120}
	if len(tensor) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(tensor))
	}
	for i, v := range want {
		if tensor[i] != v {
			t.Errorf("tensor[%d] = %v, want %v", i, tensor[i], v)
		}
	}
}

func TestTensorDropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	for x := 0; x < 3; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 200})
	}

	tensor := tensorFromBuffer(pixelBuffer(img))
	if len(tensor) != 3*Channels {
		t.Fatalf("expected %d values, got %d", 3*Channels, len(tensor))
	}
	for i, v := range tensor {
		if v == 200 {
			t.Errorf("tensor[%d] holds the alpha value", i)
		}
	}
}

func TestEncodeTensorLength(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 320, 240))
	for i := range src.Pix {
		src.Pix[i] = byte(i * 13)
	}

	norm, err := Normalize(pngReader(t, src), t.TempDir())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	defer norm.Close()

	tensor, err := EncodeTensor(norm)
	if err != nil {
		t.Fatalf("EncodeTensor failed: %v", err)
	}
	if len(tensor) != TensorLength {
		t.Fatalf("expected %d values, got %d", TensorLength, len(tensor))
	}
	for i, v := range tensor {
		if v < 0 || v > 255 {
			t.Fatalf("tensor[%d] = %v, outside the raw byte range", i, v)
		}
	}
}

func TestEncodeTensorRejectsWrongSize(t *testing.T) {
	// A normalized image is always 224x224; a file of any other size
	// reaching the encoder is an internal invariant violation.
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	norm, err := Normalize(pngReader(t, src), dir)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	defer norm.Close()

	f, err := os.Create(norm.Path())
	if err != nil {
		t.Fatalf("failed to rewrite temp file: %v", err)
	}
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatalf("failed to encode undersized image: %v", err)
	}
	f.Close()

	if _, err := EncodeTensor(norm); !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}
