package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateConfigPath_RejectsPathTraversal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name string
		path string
	}{
		{"sibling with shared prefix", "/etc/knowledged../etc/passwd"},
		{"dot dot escape", filepath.Join(home, ".config", "knowledged", "..", "..", "etc", "passwd")},
		{"literal tilde is relative", "~/.config/knowledged/config.yaml"},
		{"the directory itself", "/etc/knowledged"},
		{"unrelated absolute", "/tmp/config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateConfigPath(tt.path); err == nil {
				t.Errorf("validateConfigPath(%q) = nil, want error", tt.path)
			}
		})
	}
}

func TestValidateConfigPath_AllowsValidPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	validPaths := []string{
		filepath.Join(home, ".config", "knowledged", "config.yaml"),
		filepath.Join(home, ".config", "knowledged", "profiles", "work.yaml"),
		"/etc/knowledged/config.yaml",
	}

	for _, path := range validPaths {
		if err := validateConfigPath(path); err != nil {
			t.Errorf("validateConfigPath(%q) = %v, want nil", path, err)
		}
	}
}

func TestValidateConfigPath_RejectsSymlinkEscape(t *testing.T) {
	dir := setupTestHome(t)
	outside := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(outside, nil, 0600); err != nil {
		t.Fatal(err)
	}

	link := filepath.Join(dir, "config.yaml")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if err := validateConfigPath(link); err == nil {
		t.Errorf("validateConfigPath(%q) = nil, want error for symlink escaping config dir", link)
	}
}

func TestValidateConfigPath_SymlinkedHome(t *testing.T) {
	root := t.TempDir()
	realHome := filepath.Join(root, "var", "home", "user")
	if err := os.MkdirAll(filepath.Join(realHome, ".config", "knowledged"), 0700); err != nil {
		t.Fatal(err)
	}
	linkHome := filepath.Join(root, "home")
	if err := os.Symlink(filepath.Join(root, "var", "home"), linkHome); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	home := filepath.Join(linkHome, "user")
	t.Setenv("HOME", home)

	existing := filepath.Join(home, ".config", "knowledged", "config.yaml")
	if err := os.WriteFile(existing, nil, 0600); err != nil {
		t.Fatal(err)
	}

	validPaths := []string{
		existing,
		filepath.Join(home, ".config", "knowledged", "missing.yaml"),
		filepath.Join(realHome, ".config", "knowledged", "config.yaml"),
	}
	for _, path := range validPaths {
		if err := validateConfigPath(path); err != nil {
			t.Errorf("validateConfigPath(%q) = %v, want nil", path, err)
		}
	}

	if _, err := LoadWithFile(existing); err != nil {
		t.Errorf("LoadWithFile(%q) = %v, want nil", existing, err)
	}
}

func TestResolvePath_MissingTail(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	if err := os.Mkdir(target, 0700); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	resolvedTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		t.Fatal(err)
	}

	got := resolvePath(filepath.Join(link, "a", "b.yaml"))
	want := filepath.Join(resolvedTarget, "a", "b.yaml")
	if got != want {
		t.Errorf("resolvePath() = %q, want %q", got, want)
	}
}
