package job

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/gogpu/graymix"
)

// fileDigest returns the hex BLAKE3-256 digest of the file at path.
// Output is bit-exact, so equal digests across runs mean equal images.
func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", graymix.ErrIO, err)
	}
	defer func() { _ = f.Close() }()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: digest %s: %w", graymix.ErrIO, path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
