package mcslices

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
)

// LayerFileName returns the image name for a layer. The index is padded to at
// least three digits.
func LayerFileName(baseName string, layer int) string {
	return fmt.Sprintf("%s_%03d.png", baseName, layer)
}

// Sink writes finished canvases as PNG files into a directory.
type Sink struct {
	dir     string
	encoder png.Encoder
}

func NewSink(dir string) *Sink {
	return &Sink{
		dir: dir,
		encoder: png.Encoder{
			CompressionLevel: png.DefaultCompression,
		},
	}
}

// Persist encodes canvas and returns the path of the written file. The image
// is written to a temporary file first and renamed into place, so a failed or
// interrupted write never leaves a truncated layer behind.
func (s *Sink) Persist(canvas *Canvas, baseName string) (string, error) {
	if canvas.IsOpen() || canvas.Image() == nil {
		return "", fmt.Errorf("layer %d: %w", canvas.Layer, ErrCanvasNotReady)
	}

	path := filepath.Join(s.dir, LayerFileName(baseName, canvas.Layer))

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := s.encoder.Encode(tmp, canvas.Image()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", path, err)
	}

	return path, nil
}
