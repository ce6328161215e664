package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// File is a loaded Rego source file.
type File struct {
	Path    string `json:"path"`
	Name    string `json:"name"` // base name without .rego
	Content string `json:"content"`
}

// Loader reads .rego files from a directory tree through afero, so tests can
// use an in-memory filesystem.
type Loader struct {
	fs  afero.Fs
	dir string
}

func NewLoader(fs afero.Fs, dir string) *Loader {
	return &Loader{fs: fs, dir: dir}
}

// LoadAll returns every .rego file under the directory, sorted by path.
// A missing directory means no policies.
func (l *Loader) LoadAll() ([]*File, error) {
	if l.dir == "" {
		return nil, nil
	}
	exists, err := afero.DirExists(l.fs, l.dir)
	if err != nil {
		return nil, fmt.Errorf("check policies directory: %w", err)
	}
	if !exists {
		return nil, nil
	}

	var files []*File
	err = afero.Walk(l.fs, l.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".rego") {
			return nil
		}
		content, err := afero.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, &File{
			Path:    path,
			Name:    strings.TrimSuffix(filepath.Base(path), ".rego"),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk policies directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
