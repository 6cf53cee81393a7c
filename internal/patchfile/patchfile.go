// Package patchfile loads a YAML patch list — the fixtures a show starts
// with, each naming the YAML fixture-type file that describes it (see
// internal/gdtf.LoadTypeFile) — into a fixture.Store, and builds the
// persist.TypeLookup a restored snapshot resolves its fixture types
// against. A full GDTF XML parser is out of scope; fixture types are
// described directly as YAML instead.
package patchfile

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/gdtf"
	"github.com/demexconsole/console/internal/persist"
)

// Entry patches one fixture, naming the type file it's described by
// relative to the patch file's own directory.
type Entry struct {
	Name         string `yaml:"name"`
	TypeFile     string `yaml:"typeFile"`
	Mode         string `yaml:"mode"`
	Universe     uint16 `yaml:"universe"`
	StartAddress uint16 `yaml:"startAddress"`
}

// Document is a patch list: every fixture a show starts with.
type Document struct {
	Fixtures []Entry `yaml:"fixtures"`
}

// Load parses a patch document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO(err, "read patch file %s", path)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.IO(err, "parse patch file %s", path)
	}
	return &doc, nil
}

// loadTypes resolves and caches every distinct type file the document
// references, relative to patchDir, keyed by the type's own Name field
// (the key persist.TypeLookup is queried with).
func (doc *Document) loadTypes(patchDir string) (map[string]*gdtf.Type, error) {
	byFile := make(map[string]*gdtf.Type)
	byName := make(map[string]*gdtf.Type)
	for _, e := range doc.Fixtures {
		if _, ok := byFile[e.TypeFile]; ok {
			continue
		}
		path := e.TypeFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(patchDir, path)
		}
		ft, err := gdtf.LoadTypeFile(path)
		if err != nil {
			return nil, err
		}
		byFile[e.TypeFile] = ft
		byName[ft.Name] = ft
	}
	return byName, nil
}

// Apply patches every fixture in the document into fixtures, in document
// order (so ids are assigned sequentially starting at 1, matching how a
// freshly-patched store always behaves).
func (doc *Document) Apply(patchPath string, fixtures *fixture.Store) error {
	byName, err := doc.loadTypes(filepath.Dir(patchPath))
	if err != nil {
		return err
	}
	byFile := make(map[string]string, len(doc.Fixtures))
	for _, e := range doc.Fixtures {
		if _, ok := byFile[e.TypeFile]; ok {
			continue
		}
		ft, err := doc.resolveType(patchPath, e.TypeFile)
		if err != nil {
			return err
		}
		byFile[e.TypeFile] = ft.Name
	}

	for _, e := range doc.Fixtures {
		ft, ok := byName[byFile[e.TypeFile]]
		if !ok {
			return errs.Lookup("no fixture type loaded for %s", e.TypeFile)
		}
		if _, err := fixtures.Patch(e.Name, ft, e.Mode, e.Universe, e.StartAddress); err != nil {
			return err
		}
	}
	return nil
}

func (doc *Document) resolveType(patchPath, typeFile string) (*gdtf.Type, error) {
	path := typeFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(patchPath), path)
	}
	return gdtf.LoadTypeFile(path)
}

// TypeLookup builds a persist.TypeLookup resolving every type file named in
// the document by its fixture-type name, for restoring a persisted
// snapshot onto a show patched from this same document.
func (doc *Document) TypeLookup(patchPath string) (persist.TypeLookup, error) {
	byName, err := doc.loadTypes(filepath.Dir(patchPath))
	if err != nil {
		return nil, err
	}
	return func(name string) (*gdtf.Type, bool) {
		ft, ok := byName[name]
		return ft, ok
	}, nil
}
