// Package project resolves the on-disk layout of one target library inside an
// fdg workspace: its prepared data directory, its built artifacts, and its
// installed header root.
//
// Layout:
//
//	<workspace>/data/<library>/config.yaml     per-library configuration
//	<workspace>/data/<library>/corpus/         optional landmark corpus
//	<workspace>/output/<library>/build/include installed header root
//	<workspace>/output/<library>/build/lib     built static/dynamic libraries
//	<workspace>/output/<library>/drivers       generated fuzz drivers
package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fdg/internal/errors"
)

// headerExtensions are the recognized header file extensions
var headerExtensions = map[string]bool{
	".h":   true,
	".hpp": true,
	".hxx": true,
}

// Project is a handle to one target library inside a workspace
type Project struct {
	// Name is the library name, e.g. "cjson" or "libpng"
	Name string
	// Workspace is the root directory containing data/ and output/
	Workspace string

	libConfig *LibConfig
}

// Open resolves a library inside the workspace and verifies it is prepared:
// the data directory and the built header root must exist before any analysis
// begins.
func Open(workspace, name string) (*Project, error) {
	p := &Project{Name: name, Workspace: workspace}

	if _, err := os.Stat(p.DataDir()); err != nil {
		return nil, errors.New(errors.LibraryNotPrepared,
			"library data directory not found: "+p.DataDir(), err)
	}
	if _, err := os.Stat(p.HeaderDir()); err != nil {
		return nil, errors.New(errors.HeaderDirMissing,
			"library header root not found: "+p.HeaderDir(), err)
	}

	cfg, err := LoadLibConfig(filepath.Join(p.DataDir(), LibConfigFile))
	if err != nil {
		return nil, err
	}
	p.libConfig = cfg

	return p, nil
}

// DataDir returns the prepared data directory of the library
func (p *Project) DataDir() string {
	return filepath.Join(p.Workspace, "data", p.Name)
}

// OutputDir returns the output directory of the library
func (p *Project) OutputDir() string {
	return filepath.Join(p.Workspace, "output", p.Name)
}

// HeaderDir returns the installed header root of the built library
func (p *Project) HeaderDir() string {
	return filepath.Join(p.OutputDir(), "build", "include")
}

// LibDir returns the directory holding the built library artifacts
func (p *Project) LibDir() string {
	return filepath.Join(p.OutputDir(), "build", "lib")
}

// DriverDir returns the directory generated drivers are written to
func (p *Project) DriverDir() string {
	return filepath.Join(p.OutputDir(), "drivers")
}

// LibConfig returns the per-library configuration
func (p *Project) LibConfig() *LibConfig {
	return p.libConfig
}

// HeaderFiles lists every header file under the header root, as paths relative
// to the header root, in lexical order.
func (p *Project) HeaderFiles() ([]string, error) {
	root := p.HeaderDir()
	var headers []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !IsHeaderFile(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		headers = append(headers, rel)
		return nil
	})
	if err != nil {
		return nil, errors.New(errors.HeaderDirMissing,
			"failed to list header root "+root, err)
	}

	sort.Strings(headers)
	return headers, nil
}

// LandmarkCorpus returns the content of the first corpus seed file, if the
// library ships one, to be embedded into prompts as an input example.
func (p *Project) LandmarkCorpus() (string, bool) {
	corpusDir := filepath.Join(p.DataDir(), "corpus")
	entries, err := os.ReadDir(corpusDir)
	if err != nil || len(entries) == 0 {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(corpusDir, e.Name()))
		if err != nil {
			continue
		}
		return string(data), true
	}
	return "", false
}

// IsHeaderFile reports whether path has a recognized header extension
func IsHeaderFile(path string) bool {
	return headerExtensions[strings.ToLower(filepath.Ext(path))]
}
