package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// errFound stops the glob walk once the first match is seen.
var errFound = errors.New("found")

// Locate resolves a configured workbook filename against the data
// directory. It tries the direct path first, then a recursive glob, so
// files moved into subdirectories are still found.
func Locate(dataDir, filename string) (string, error) {
	direct := filepath.Join(dataDir, filename)
	if _, err := os.Stat(direct); err == nil {
		return direct, nil
	}

	pattern := filepath.Join("**", filename)
	var found string
	err := doublestar.GlobWalk(os.DirFS(dataDir), pattern, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		found = filepath.Join(dataDir, path)
		return errFound
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("search %s under %s: %w", filename, dataDir, err)
	}
	if found == "" {
		return "", fmt.Errorf("%s not found under %s: %w", filename, dataDir, fs.ErrNotExist)
	}
	return found, nil
}
