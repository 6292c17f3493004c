package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the contents of the given files into one version string.
// A missing file hashes as a fixed marker so its later appearance changes the
// result.
func Fingerprint(paths ...string) (string, error) {
	h := xxhash.New()
	for _, path := range paths {
		_, _ = h.WriteString(path)
		_, _ = h.Write([]byte{0})
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			_, _ = h.WriteString("<missing>")
			continue
		}
		if err != nil {
			return "", fmt.Errorf("fingerprint %s: %w", path, err)
		}
		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return "", fmt.Errorf("fingerprint %s: %w", path, err)
		}
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}
