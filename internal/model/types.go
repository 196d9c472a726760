package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata describes the bundled model artifact. It ships as a JSON
// file next to the .onnx file so the class-index order travels with
// the weights it was trained against; a retrained model with
// reordered classes must ship a new metadata file.
type Metadata struct {
	Version     string   `json:"version"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return meta, nil
}

// Validate checks the internal consistency of the metadata once at
// load time. A class list that disagrees with the model's output
// shape would silently mislabel every diagnosis, so it fails loudly
// here instead.
func (m Metadata) Validate() error {
	if len(m.InputShape) == 0 || len(m.OutputShape) == 0 {
		return fmt.Errorf("metadata is missing input or output shape")
	}
	if len(m.Classes) == 0 {
		return fmt.Errorf("metadata declares no classes")
	}

	classes := m.OutputShape[len(m.OutputShape)-1]
	if int64(len(m.Classes)) != classes {
		return fmt.Errorf("metadata declares %d classes but the model outputs %d values",
			len(m.Classes), classes)
	}

	if m.ImageSize > 0 {
		want := int64(m.ImageSize) * int64(m.ImageSize) * 3
		if int64(m.InputLength()) != want {
			return fmt.Errorf("input shape holds %d values but image_size %d implies %d",
				m.InputLength(), m.ImageSize, want)
		}
	}

	return nil
}

// InputLength is the number of float values in one input tensor (the
// product of all input dimensions, batch included).
func (m Metadata) InputLength() int {
	n := 1
	for _, dim := range m.InputShape {
		n *= int(dim)
	}
	return n
}

// OutputLength is the number of per-class scores the model emits.
func (m Metadata) OutputLength() int {
	n := 1
	for _, dim := range m.OutputShape {
		n *= int(dim)
	}
	return n
}
