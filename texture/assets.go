package texture

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
)

// AssetLoader reads resources out of a Minecraft client jar.
type AssetLoader struct {
	Files map[string]*zip.File

	reader *zip.ReadCloser
}

func NewAssetLoaderFromClientJAR(path string) (*AssetLoader, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}

	return &AssetLoader{
		Files:  indexAssets(r.File),
		reader: r,
	}, nil
}

// NewAssetLoader wraps an already opened archive, e.g. one built in memory.
func NewAssetLoader(r *zip.Reader) *AssetLoader {
	return &AssetLoader{
		Files: indexAssets(r.File),
	}
}

func indexAssets(entries []*zip.File) map[string]*zip.File {
	files := make(map[string]*zip.File)
	for _, f := range entries {
		if !strings.HasPrefix(f.Name, "assets/") && !strings.HasPrefix(f.Name, "data/") {
			continue
		}
		files[f.Name] = f
	}
	return files
}

func (a *AssetLoader) Has(name string) bool {
	_, ok := a.Files[name]
	return ok
}

func (a *AssetLoader) open(name string) (io.ReadCloser, error) {
	file, ok := a.Files[name]
	if !ok {
		return nil, fmt.Errorf("file %s does not exist", name)
	}
	return file.Open()
}

func (a *AssetLoader) LoadPNG(name string) (image.Image, error) {
	fd, err := a.open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	return png.Decode(fd)
}

func (a *AssetLoader) LoadRaw(name string) ([]byte, error) {
	fd, err := a.open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	return io.ReadAll(fd)
}

func (a *AssetLoader) LoadJSON(name string, v any) error {
	fd, err := a.open(name)
	if err != nil {
		return err
	}
	defer fd.Close()

	if err := json.NewDecoder(fd).Decode(v); err != nil {
		return fmt.Errorf("failed to decode json file %s: %w", name, err)
	}
	return nil
}

func (a *AssetLoader) Close() {
	if a.reader != nil {
		a.reader.Close()
	}
}
