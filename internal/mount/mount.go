// Package mount discovers mountpoints and recording chunks scattered across
// them, and presents a striped recording as a single seekable byte stream
// (the VBS/Mark6 virtual file layer).
package mount

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	jvlbierrors "github.com/five82/jvlbi/internal/errors"
)

// ExpandMountpoints expands a list of shell-glob or anchored-regex (prefixed
// "re:") patterns, intersected with existing, readable directories,
// excluding anything whose resolved path is "/".
func ExpandMountpoints(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(path string) error {
		resolved, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		resolved = filepath.Clean(resolved)
		if resolved == string(filepath.Separator) {
			return nil
		}
		info, err := os.Stat(resolved)
		if err != nil || !info.IsDir() {
			return nil
		}
		if seen[resolved] {
			return nil
		}
		seen[resolved] = true
		out = append(out, resolved)
		return nil
	}

	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "re:") {
			expr := strings.TrimPrefix(pattern, "re:")
			re, err := regexp.Compile("^(?:" + expr + ")$")
			if err != nil {
				return nil, jvlbierrors.NewConfigError("mount: invalid mountpoint regex: " + expr)
			}
			if err := walkMatchingRegex(re, add); err != nil {
				return nil, err
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, jvlbierrors.NewConfigError("mount: invalid mountpoint glob: " + pattern)
		}
		for _, m := range matches {
			if err := add(m); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// walkMatchingRegex scans the root filesystem's top-level mount candidates
// under "/" for directories whose absolute path matches re. This is a
// narrow, best-effort implementation: it only walks "/" one level deep,
// which is sufficient for the conventional "/mnt/diskNN"-style mountpoint
// naming this engine targets.
func walkMatchingRegex(re *regexp.Regexp, add func(string) error) error {
	entries, err := os.ReadDir(string(filepath.Separator))
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		full := filepath.Join(string(filepath.Separator), e.Name())
		if re.MatchString(full) {
			if err := add(full); err != nil {
				return err
			}
		}
	}
	return nil
}
