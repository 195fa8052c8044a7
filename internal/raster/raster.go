// Package raster decodes image files into shared read-only raster sources
// for the compositor. Decoding stays here, at the collaborator boundary;
// the compositor itself never touches encoded bytes.
package raster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"
)

// Source is a decoded raster with its origin path, shared read-only with
// every layer that references it.
type Source struct {
	Path  string
	Image image.Image
}

// Load decodes an image from the specified path.
func Load(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Source{Path: path, Image: img}, nil
}

// Name returns the base name of the source file without extension.
func (s *Source) Name() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*.png, *.jpg, *.jpeg, *.tiff, *.tif)"
}

// LoadDir loads every supported image in a directory, sorted by the
// directory listing order. Used by the optional starter-library stage.
func LoadDir(dir string) ([]*Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read library dir: %w", err)
	}

	var sources []*Source
	for _, entry := range entries {
		if entry.IsDir() || !IsSupportedFormat(entry.Name()) {
			continue
		}
		src, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
