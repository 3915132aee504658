package graymix

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadPNG decodes the PNG file at path. Failure to open or read the file is
// ErrIO; a malformed file is ErrDecode.
func LoadPNG(path string) (*Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer func() { _ = f.Close() }()

	b, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// SavePNG encodes b and writes it to path with default compression.
func SavePNG(path string, b *Buffer) error {
	var e Encoder
	return e.SavePNG(path, b)
}

// SavePNG encodes b and writes it to path.
//
// The image is encoded completely before the file system is touched, then
// written to a temporary file in the same directory and renamed over path.
// A failed save leaves any existing file at path unchanged.
func (e *Encoder) SavePNG(path string, b *Buffer) error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrEncode)
	}
	data, err := e.encode(b.pix, b.width, b.height)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	path = filepath.Clean(path)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file for %s: %w", ErrIO, path, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: rename to %s: %w", ErrIO, path, err)
	}

	success = true
	Logger().Debug("graymix: saved png", "path", path, "bytes", len(data))
	return nil
}
