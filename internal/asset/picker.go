// Package asset finds and loads the images and clips the overlay uses.
package asset

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
)

// ErrEmptyDir is returned for a directory that holds no files.
var ErrEmptyDir = errors.New("directory has no files")

// DirPicker picks files uniformly at random from a directory.
type DirPicker struct {
	rng *rand.Rand
}

// NewDirPicker returns a picker drawing from rng. A nil rng uses the
// package-level source.
func NewDirPicker(rng *rand.Rand) *DirPicker {
	return &DirPicker{rng: rng}
}

// PickRandom returns the path of one file in dir.
func (p *DirPicker) PickRandom(dir string) (string, error) {
	files, err := listFiles(dir)
	if err != nil {
		return "", err
	}

	var i int
	if p.rng != nil {
		i = p.rng.IntN(len(files))
	} else {
		i = rand.IntN(len(files))
	}
	return files[i], nil
}

// Check reports whether dir can be picked from.
func (p *DirPicker) Check(dir string) error {
	_, err := listFiles(dir)
	return err
}

// listFiles returns the files directly inside dir, sorted by name so a
// seeded picker is repeatable. Subdirectories are skipped.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrEmptyDir)
	}

	sort.Strings(files)
	return files, nil
}
