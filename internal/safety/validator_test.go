package safety

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestValidateDeleteTarget verifies only immediate children of the root pass
func TestValidateDeleteTarget(t *testing.T) {
	root := t.TempDir()
	v := NewValidator(root, nil)

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"immediate child", filepath.Join(root, "notes.txt"), nil},
		{"hidden child", filepath.Join(root, ".cache"), nil},
		{"root itself", root, ErrInvalidPath},
		{"empty", "", ErrInvalidPath},
		{"whitespace", "   ", ErrInvalidPath},
		{"nested", filepath.Join(root, "build", "out.o"), ErrNotImmediateChild},
		{"parent", filepath.Dir(root), ErrOutsideRoot},
		{"sibling", root + "-other/file", ErrOutsideRoot},
		{"traversal", root + "/../etc/passwd", ErrTraversal},
		{"traversal back in", root + "/sub/../notes.txt", ErrTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDeleteTarget(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDeleteTarget(%q) = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

// TestValidatorRelativeRoot verifies a relative root resolves against the working directory
func TestValidatorRelativeRoot(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	v := NewValidator(".", nil)
	if err := v.ValidateDeleteTarget("notes.txt"); err != nil {
		t.Errorf("relative child rejected: %v", err)
	}
	if err := v.ValidateDeleteTarget(filepath.Join(".", "build", "x")); !errors.Is(err, ErrNotImmediateChild) {
		t.Errorf("nested relative path: got %v, want %v", err, ErrNotImmediateChild)
	}
}

// TestValidateProtectedPaths verifies protected files are refused while their
// neighbours stay deletable
func TestValidateProtectedPaths(t *testing.T) {
	root := t.TempDir()
	db := filepath.Join(root, "history.db")
	v := NewValidator(root, []string{db, db + "-wal", filepath.Join(root, "coq-sweep.yaml"), ""})

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"database", db, ErrProtectedPath},
		{"wal file", db + "-wal", ErrProtectedPath},
		{"config", filepath.Join(root, "coq-sweep.yaml"), ErrProtectedPath},
		{"similar name", db + ".bak", nil},
		{"unrelated", filepath.Join(root, "notes.txt"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDeleteTarget(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDeleteTarget(%q) = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

// TestValidateProtectedPathsThroughSymlink verifies a protected file is
// recognised when the swept directory is reached through a symlink
func TestValidateProtectedPathsThroughSymlink(t *testing.T) {
	realDir := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	v := NewValidator(link, []string{filepath.Join(realDir, "history.db")})
	if err := v.ValidateDeleteTarget(filepath.Join(link, "history.db")); !errors.Is(err, ErrProtectedPath) {
		t.Errorf("got %v, want %v", err, ErrProtectedPath)
	}

	v = NewValidator(realDir, []string{filepath.Join(link, "history.db")})
	if err := v.ValidateDeleteTarget(filepath.Join(realDir, "history.db")); !errors.Is(err, ErrProtectedPath) {
		t.Errorf("resolved protected path: got %v, want %v", err, ErrProtectedPath)
	}
}

// TestDetectTraversal verifies ".." detection on raw input
func TestDetectTraversal(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"..", true},
		{"../x", true},
		{"a/../b", true},
		{"a/..b", false},
		{"..hidden", false},
		{"notes.txt", false},
	}
	for _, tt := range tests {
		if got := DetectTraversal(tt.raw); got != tt.want {
			t.Errorf("DetectTraversal(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestIsBareName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"README.md", true},
		{".gitignore", true},
		{"", false},
		{".", false},
		{"..", false},
		{"dir/file", false},
		{`dir\file`, false},
	}
	for _, tt := range tests {
		if got := IsBareName(tt.name); got != tt.want {
			t.Errorf("IsBareName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
