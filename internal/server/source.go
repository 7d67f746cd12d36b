package server

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Extensions are tried in order when looking up a document by name.
var Extensions = []string{".apib", ".md"}

// Source loads documents by name.
type Source interface {
	Read(name string) (string, error)
}

// DirSource reads <dir>/<name>.apib or <dir>/<name>.md.
type DirSource string

func (d DirSource) Read(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", errors.Wrapf(os.ErrNotExist, "document %q", name)
	}
	for _, ext := range Extensions {
		b, err := os.ReadFile(filepath.Join(string(d), name+ext))
		if err == nil {
			return string(b), nil
		}
		if !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "reading document %q", name)
		}
	}
	return "", errors.Wrapf(os.ErrNotExist, "document %q", name)
}
