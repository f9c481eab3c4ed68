package formdef

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/vango-dev/formtabs/internal/errors"
)

// Source reads definition documents by form name.
type Source interface {
	// List returns the names of the forms the source holds, sorted.
	List(ctx context.Context) ([]string, error)

	// Load returns the document for name. A missing form is an error
	// with code E001.
	Load(ctx context.Context, name string) (Document, error)
}

// FSSource reads definitions from a file system. Each form is a file in
// the root directory named after the form, with a supported extension.
type FSSource struct {
	fsys fs.FS
	root string
}

// NewDirSource returns a source for the definition files in dir.
func NewDirSource(dir string) *FSSource {
	return &FSSource{fsys: os.DirFS(dir), root: dir}
}

// NewFSSource returns a source for fsys. root is only used to build the
// paths reported in errors.
func NewFSSource(fsys fs.FS, root string) *FSSource {
	return &FSSource{fsys: fsys, root: root}
}

// List implements Source.
func (s *FSSource) List(ctx context.Context) ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, errors.New("E040").Wrap(err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := trimExt(e.Name()); ok && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Load implements Source. Extensions are tried in the order .yaml, .yml,
// .json, .hcl.
func (s *FSSource) Load(ctx context.Context, name string) (Document, error) {
	if !validName(name) {
		return Document{}, errors.New("E001").WithDetail("Invalid form name " + name + ".")
	}
	for _, e := range extensions {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		file := name + e.ext
		data, err := fs.ReadFile(s.fsys, file)
		if stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		p := filepath.Join(s.root, file)
		if err != nil {
			return Document{}, errors.New("E040").Wrap(err)
		}
		return Document{Name: name, Path: p, Format: e.format, Data: data}, nil
	}
	return Document{}, errors.New("E001").
		WithDetail("No definition named " + name + " in " + s.root + ".")
}

// validName rejects names that would escape the source root.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && path.Base(name) == name && fs.ValidPath(name)
}
