package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LocalFile is a discovered file under the input root. Valid is false when
// the basename carries the invalid-data marker and the file must be skipped.
type LocalFile struct {
	Path  string
	Valid bool
}

// MirroredPath pairs one input volume with its derived-profile output path.
// Derived on every run from the on-disk tree, never stored.
type MirroredPath struct {
	Input  string
	Output string
}

// MapOutput computes the mirrored output path for an input file: the input's
// directory relative to inputRoot, re-rooted under outputRoot, keeping the
// basename and appending suffix. Fails if input does not live under inputRoot.
func MapOutput(inputRoot, outputRoot, input, suffix string) (MirroredPath, error) {
	rel, err := filepath.Rel(inputRoot, filepath.Dir(input))
	if err != nil {
		return MirroredPath{}, fmt.Errorf("map output for %s: %w", input, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return MirroredPath{}, fmt.Errorf("map output: %s is outside input root %s", input, inputRoot)
	}
	return MirroredPath{
		Input:  input,
		Output: filepath.Join(outputRoot, rel, filepath.Base(input)+suffix),
	}, nil
}

// InputFromOutput inverts MapOutput: given an output path produced against
// outputRoot with suffix, it recovers the original input path under
// inputRoot. Used by run validation to detect orphan outputs.
func InputFromOutput(inputRoot, outputRoot, output, suffix string) (string, error) {
	rel, err := filepath.Rel(outputRoot, output)
	if err != nil {
		return "", fmt.Errorf("invert output %s: %w", output, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invert output: %s is outside output root %s", output, outputRoot)
	}
	if suffix != "" && !strings.HasSuffix(rel, suffix) {
		return "", fmt.Errorf("invert output: %s does not carry suffix %q", output, suffix)
	}
	return filepath.Join(inputRoot, strings.TrimSuffix(rel, suffix)), nil
}

// MarkedInvalid reports whether a basename carries the invalid-data marker.
// Exact, case-sensitive suffix match.
func MarkedInvalid(name, marker string) bool {
	return marker != "" && strings.HasSuffix(name, marker)
}
