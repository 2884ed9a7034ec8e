package streamgen

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/streamgen/errors"
)

// CheckResult holds the outcome of comparing a fresh generation pass with
// the units already on disk.
type CheckResult struct {
	UpToDate bool

	// Changed lists units whose content differs
	Changed []string

	// Missing lists units that would be generated but do not exist
	Missing []string

	// Stale lists generated files on disk that the pass no longer produces
	Stale []string
}

// CompareDirectories compares the units in generatedDir with existingDir.
// Only files carrying the unit suffix (e.g. ".g.go") are considered stale
// candidates, so hand-written files next to generated ones are ignored.
func CompareDirectories(generatedDir, existingDir, ext string) (*CheckResult, error) {
	suffix := ".g." + ext
	result := &CheckResult{}

	generated := make(map[string]bool)
	err := filepath.WalkDir(generatedDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(generatedDir, path)
		if err != nil {
			return err
		}
		generated[rel] = true

		different, err := filesAreDifferent(path, filepath.Join(existingDir, rel))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result.Missing = append(result.Missing, rel)
		case err != nil:
			return err
		case different:
			result.Changed = append(result.Changed, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", generatedDir)
	}

	entries, err := os.ReadDir(existingDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "failed to read %s", existingDir)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, suffix) || generated[name] {
			continue
		}
		if isGenerated(filepath.Join(existingDir, name)) {
			result.Stale = append(result.Stale, name)
		}
	}

	sort.Strings(result.Changed)
	sort.Strings(result.Missing)
	sort.Strings(result.Stale)
	result.UpToDate = len(result.Changed) == 0 && len(result.Missing) == 0 && len(result.Stale) == 0
	return result, nil
}

// filesAreDifferent compares the generated file with its counterpart on disk.
// A missing counterpart is reported as fs.ErrNotExist.
func filesAreDifferent(generated, existing string) (bool, error) {
	want, err := os.ReadFile(generated)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", generated)
	}
	got, err := os.ReadFile(existing)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(want, got), nil
}

// isGenerated reports whether the file carries the generated-code header.
func isGenerated(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	line, _, _ := bytes.Cut(content, []byte("\n"))
	return bytes.HasPrefix(line, []byte(GeneratedHeaderPrefix))
}

// GeneratedHeaderPrefix starts the first line of every generated unit.
const GeneratedHeaderPrefix = "// Code generated by streamgen"
