package safety

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath       = errors.New("invalid path")
	ErrOutsideRoot       = errors.New("outside swept directory")
	ErrTraversal         = errors.New("path traversal detected")
	ErrNotImmediateChild = errors.New("not an immediate child of swept directory")
	ErrProtectedPath     = errors.New("protected path")
)

// Validator enforces the safety contract for all delete operations
type Validator struct {
	Root           string
	ProtectedPaths []string
}

// NewValidator creates a validator bound to the swept directory.
// protected lists files the sweep must never remove, such as its own
// config, history database and log files.
func NewValidator(root string, protected []string) *Validator {
	r, err := NormalizePath(root)
	if err != nil {
		r = filepath.Clean(root)
	}
	return &Validator{
		Root:           r,
		ProtectedPaths: normalizeProtected(protected),
	}
}

// ValidateDeleteTarget is the single-source-of-truth for delete authorization.
// Only immediate children of Root may be deleted.
func (v *Validator) ValidateDeleteTarget(path string) error {
	// 1. Detect path traversal in raw input
	if DetectTraversal(path) {
		return ErrTraversal
	}

	// 2. Normalize path to absolute, cleaned form
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	// 3. The root itself is never a target
	if p == v.Root {
		return ErrInvalidPath
	}

	// 4. Ensure within root
	if !hasPathPrefix(p, v.Root) {
		return ErrOutsideRoot
	}

	// 5. Never reach deeper than one level
	if filepath.Dir(p) != v.Root {
		return ErrNotImmediateChild
	}

	// 6. Block protected paths, also when reached through a symlinked directory
	if IsProtectedPath(p, v.ProtectedPaths) || IsProtectedPath(resolveDir(p), v.ProtectedPaths) {
		return ErrProtectedPath
	}

	return nil
}

// IsProtectedPath checks if path is, or lies below, one of the protected paths
func IsProtectedPath(path string, protected []string) bool {
	for _, prot := range protected {
		if hasPathPrefix(path, prot) {
			return true
		}
	}
	return false
}

// normalizeProtected converts protected paths to absolute, cleaned form and
// adds their symlink-resolved variants
func normalizeProtected(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, raw := range paths {
		p, err := NormalizePath(raw)
		if err != nil {
			continue
		}
		out = append(out, p)
		if resolved := resolveDir(p); resolved != p {
			out = append(out, resolved)
		}
	}
	return out
}

// resolveDir evaluates symlinks in the parent directory of p. The file
// itself may not exist yet.
func resolveDir(p string) string {
	dir, err := filepath.EvalSymlinks(filepath.Dir(p))
	if err != nil {
		return p
	}
	return filepath.Join(dir, filepath.Base(p))
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// DetectTraversal blocks any ".." segment in raw input
func DetectTraversal(raw string) bool {
	parts := strings.Split(filepath.ToSlash(raw), "/")
	for _, p := range parts {
		if p == ".." {
			return true
		}
	}
	return false
}

// IsBareName reports whether name is a single path element
func IsBareName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if path == prefix {
		return true
	}
	if prefix == string(filepath.Separator) {
		return strings.HasPrefix(path, prefix)
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}
