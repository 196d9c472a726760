package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"os"
)

// EncodeTensor decodes a normalized 224x224 JPEG and packs its pixels
// into the flat float32 tensor the classifier expects: interleaved
// R,G,B per pixel in row-major scan order, raw 0-255 values. The model
// was trained on unscaled byte intensities, so no rescaling to [0,1]
// is applied here.
func EncodeTensor(n *NormalizedImage) ([]float32, error) {
	f, err := os.Open(n.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to open normalized image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != TargetSize || bounds.Dy() != TargetSize {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrEncoding, bounds.Dx(), bounds.Dy(), TargetSize, TargetSize)
	}

	tensor := tensorFromBuffer(pixelBuffer(img))
	if len(tensor) != TensorLength {
		return nil, fmt.Errorf("%w: tensor has %d values, want %d",
			ErrEncoding, len(tensor), TensorLength)
	}

	return tensor, nil
}

// pixelBuffer returns the image's pixels as interleaved R,G,B,A bytes
// in row-major order, 4 bytes per pixel.
func pixelBuffer(img image.Image) []byte {
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	return nrgba.Pix
}

// tensorFromBuffer walks the buffer in strides of 4, keeping R, G and
// B as float32 and discarding alpha.
func tensorFromBuffer(pix []byte) []float32 {
	tensor := make([]float32, 0, (len(pix)/4)*Channels)
	for i := 0; i+3 < len(pix); i += 4 {
		tensor = append(tensor, float32(pix[i]), float32(pix[i+1]), float32(pix[i+2]))
	}
	return tensor
}
