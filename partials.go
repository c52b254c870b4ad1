package mustache

import (
	"os"
	"path"
	"strings"
)

// FileProvider implements PartialProvider by reading partials from a
// filesystem. When a partial named NAME is requested, FileProvider
// searches each listed path for a file named NAME followed by any of
// the listed extensions. The default for Paths is the current working
// directory. The default for Extensions examines, in order, no
// extension, then ".mustache", then ".stache". If Unsafe is not set,
// partial names that clean to a leading "." are rejected (rather than
// potentially escaping the listed directories).
type FileProvider struct {
	Paths      []string
	Extensions []string
	Unsafe     bool
}

// Get returns the partial's contents, or ok == false if it could not be
// found, under any name-safety rule, in any listed path+extension
// combination, or if it could not be read — a missing partial is never
// an error (§4.C, §7's silent-missing policy).
func (fp FileProvider) Get(name string) (string, bool) {
	cleanname := name
	if !fp.Unsafe {
		cleanname = path.Clean(name)
		if strings.HasPrefix(cleanname, ".") {
			return "", false
		}
	}

	paths := fp.Paths
	if paths == nil {
		paths = []string{""}
	}
	exts := fp.Extensions
	if exts == nil {
		exts = []string{"", ".mustache", ".stache"}
	}

	for _, p := range paths {
		for _, e := range exts {
			data, err := os.ReadFile(path.Join(p, cleanname+e))
			if err == nil {
				return string(data), true
			}
		}
	}
	return "", false
}

var _ PartialProvider = FileProvider{}

// StaticProvider implements PartialProvider from an in-memory map of
// partial name to template body.
type StaticProvider struct {
	Partials map[string]string
}

// Get returns the partial's contents, or ok == false if Partials is nil
// or has no entry for name.
func (sp StaticProvider) Get(name string) (string, bool) {
	data, ok := sp.Partials[name]
	return data, ok
}

var _ PartialProvider = StaticProvider{}
