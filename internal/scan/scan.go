package scan

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Kind classifies a directory entry after following symlinks
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
	KindSymlink   Kind = "symlink" // dangling symlink
	KindOther     Kind = "other"
	KindVanished  Kind = "vanished"
)

// Entry is one immediate child of a swept directory.
// Entries are produced by a single List call and consumed once.
type Entry struct {
	Name string
	Kind Kind
	Size int64
}

// IsRegular reports whether the entry is an ordinary file.
// A symlink that resolves to a regular file counts as one.
func (e Entry) IsRegular() bool {
	return e.Kind == KindFile
}

// List reads the immediate entries of dir and classifies each one.
// An empty dir means the current directory. Order is whatever the
// filesystem listing returns.
func List(fs afero.Fs, dir string) ([]Entry, error) {
	if dir == "" {
		dir = "."
	}

	f, err := fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, classify(fs, filepath.Join(dir, name), name))
	}
	return entries, nil
}

// classify stats the entry, following symlinks. An entry that cannot be
// stat'ed is never treated as a regular file.
func classify(fs afero.Fs, path, name string) Entry {
	info, err := fs.Stat(path)
	if err != nil {
		if isDanglingSymlink(fs, path) {
			return Entry{Name: name, Kind: KindSymlink}
		}
		return Entry{Name: name, Kind: KindVanished}
	}

	mode := info.Mode()
	switch {
	case mode.IsRegular():
		return Entry{Name: name, Kind: KindFile, Size: info.Size()}
	case mode.IsDir():
		return Entry{Name: name, Kind: KindDirectory}
	default:
		return Entry{Name: name, Kind: KindOther}
	}
}

func isDanglingSymlink(fs afero.Fs, path string) bool {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return false
	}
	info, _, err := lstater.LstatIfPossible(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}
