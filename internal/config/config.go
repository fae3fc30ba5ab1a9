// Package config loads the optional `.diffpatch.toml` defaults file
// described in SPEC_FULL.md's ambient-stack expansion: a supplement beyond
// spec.md modeled on original_source/src/main.rs's pre-flight narration of
// discovered exclude lists, parsed with github.com/pelletier/go-toml/v2.
// CLI flags always take precedence; this file only supplies fallbacks.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the fixed name looked up in the source directory.
const FileName = ".diffpatch.toml"

// Defaults mirrors the subset of create flags that make sense to default
// from a project-local file.
type Defaults struct {
	ExcludeExtensions []string `toml:"exclude_extensions"`
	ExcludeDirs       []string `toml:"exclude_dirs"`
	CheckFiles        []string `toml:"check_files"`
}

// Load reads sourceDir/.diffpatch.toml if present. A missing file is not an
// error; it yields a zero Defaults.
func Load(sourceDir string) (Defaults, error) {
	var d Defaults
	path := filepath.Join(sourceDir, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return d, err
	}
	if err := toml.Unmarshal(raw, &d); err != nil {
		return d, err
	}
	return d, nil
}
