// Package iconset writes the ten PNGs Apple's icon compiler expects into a
// <name>.iconset folder.
package iconset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mavwarf/mkicns/internal/host"
)

// Ext is the folder extension iconutil requires.
const Ext = ".iconset"

// DirPerm is the permission used when creating the iconset folder.
const DirPerm = 0755

// Spec pairs an iconset file name with its pixel size.
type Spec struct {
	Name string
	Size int
}

// Specs is the Apple iconset layout, largest first. Export resizes the
// document in place, so the order must stay non-increasing.
var Specs = []Spec{
	{"icon_512x512@2x.png", 1024},
	{"icon_512x512.png", 512},
	{"icon_256x256@2x.png", 512},
	{"icon_256x256.png", 256},
	{"icon_128x128@2x.png", 256},
	{"icon_128x128.png", 128},
	{"icon_32x32@2x.png", 64},
	{"icon_32x32.png", 32},
	{"icon_16x16@2x.png", 32},
	{"icon_16x16.png", 16},
}

// Validate checks that specs is non-empty, sorted non-increasing by size,
// and that every name is unique.
func Validate(specs []Spec) error {
	if len(specs) == 0 {
		return fmt.Errorf("iconset: no sizes")
	}
	seen := make(map[string]bool, len(specs))
	for i, s := range specs {
		if s.Size <= 0 {
			return fmt.Errorf("iconset: %s has size %d", s.Name, s.Size)
		}
		if seen[s.Name] {
			return fmt.Errorf("iconset: duplicate name %s", s.Name)
		}
		seen[s.Name] = true
		if i > 0 && s.Size > specs[i-1].Size {
			return fmt.Errorf("iconset: %s (%dpx) is larger than %s (%dpx)",
				s.Name, s.Size, specs[i-1].Name, specs[i-1].Size)
		}
	}
	return nil
}

// BaseName strips the last extension from name. Names without an extension
// are returned unchanged.
func BaseName(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

// FolderPath returns <doc dir>/<doc name without extension>.iconset.
func FolderPath(doc host.Document) string {
	return filepath.Join(doc.Dir(), BaseName(doc.Name())+Ext)
}

// IcnsPath returns the .icns file iconutil writes for an iconset folder.
func IcnsPath(folder string) string {
	return strings.TrimSuffix(folder, Ext) + ".icns"
}

// EnsureFolder creates path when it does not exist. An existing folder is
// left as is, including any files already in it.
func EnsureFolder(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("iconset: %s exists and is not a directory", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(path, DirPerm)
}

// ExportError reports the step that failed. The document has already been
// resized for that step and is not restored.
type ExportError struct {
	Index int
	Spec  Spec
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("exporting %s (%dpx): %v", e.Spec.Name, e.Spec.Size, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Export resizes doc to each size in specs, in order, and writes a PNG for
// each into folder. progress, when non-nil, is called after every file.
// It returns the paths written before any failure.
func Export(doc host.Document, folder string, specs []Spec, progress func(Spec, string)) ([]string, error) {
	written := make([]string, 0, len(specs))
	for i, s := range specs {
		if err := doc.Resize(s.Size, s.Size); err != nil {
			return written, &ExportError{Index: i, Spec: s, Err: err}
		}
		path := filepath.Join(folder, s.Name)
		if err := doc.ExportPNG(path); err != nil {
			return written, &ExportError{Index: i, Spec: s, Err: err}
		}
		written = append(written, path)
		if progress != nil {
			progress(s, path)
		}
	}
	return written, nil
}
