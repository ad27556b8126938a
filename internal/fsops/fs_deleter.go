package fsops

import "github.com/spf13/afero"

// FsDeleter implements Deleter on top of an afero filesystem
type FsDeleter struct {
	Fs afero.Fs
}

// Remove deletes a single file. Directories are never removed recursively.
func (d FsDeleter) Remove(path string) error {
	return d.Fs.Remove(path)
}
