package analyzer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	for _, dir := range []string{"node_modules", ".git", "vendor", "__pycache__", ".codemod"} {
		if !policy.SkipDir(dir) {
			t.Errorf("SkipDir(%q) = false, want true", dir)
		}
	}
	if policy.SkipDir("internal") {
		t.Error("SkipDir(internal) = true, want false")
	}

	if !policy.SkipFile("module.pyc") {
		t.Error("SkipFile(module.pyc) = false, want true")
	}
	if !policy.SkipFile("server.log") {
		t.Error("SkipFile(server.log) = false, want true")
	}
	if policy.SkipFile("main.go") {
		t.Error("SkipFile(main.go) = true, want false")
	}

	if policy.TooLarge(policy.MaxFileSizeBytes) {
		t.Error("TooLarge(cap) = true, want false")
	}
	if !policy.TooLarge(policy.MaxFileSizeBytes + 1) {
		t.Error("TooLarge(cap+1) = false, want true")
	}
}

func TestLoadPolicy(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		policy, err := LoadPolicy(filepath.Join(t.TempDir(), "scan.toml"))
		if err != nil {
			t.Fatalf("LoadPolicy() error = %v", err)
		}
		if !policy.SkipDir("node_modules") {
			t.Error("defaults not applied for missing file")
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scan.toml")
		content := `
excluded_dirs = ["generated"]
max_file_size_bytes = 2048
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write policy: %v", err)
		}

		policy, err := LoadPolicy(path)
		if err != nil {
			t.Fatalf("LoadPolicy() error = %v", err)
		}
		if !policy.SkipDir("generated") {
			t.Error("SkipDir(generated) = false, want true")
		}
		if policy.SkipDir("node_modules") {
			t.Error("SkipDir(node_modules) = true after override, want false")
		}
		if policy.MaxFileSizeBytes != 2048 {
			t.Errorf("MaxFileSizeBytes = %d, want 2048", policy.MaxFileSizeBytes)
		}
		// Suffixes were not named in the file, so defaults survive.
		if !policy.SkipFile("module.pyc") {
			t.Error("SkipFile(module.pyc) = false, want default suffixes kept")
		}
	})

	t.Run("rejects malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scan.toml")
		if err := os.WriteFile(path, []byte("excluded_dirs = [unclosed"), 0644); err != nil {
			t.Fatalf("write policy: %v", err)
		}
		if _, err := LoadPolicy(path); err == nil {
			t.Error("LoadPolicy() with malformed toml should fail")
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		cases := []struct {
			name    string
			content string
		}{
			{"empty dir entry", `excluded_dirs = [""]`},
			{"dir with separator", `excluded_dirs = ["a/b"]`},
			{"empty suffix", `excluded_suffixes = [""]`},
			{"negative size cap", `max_file_size_bytes = -1`},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "scan.toml")
				if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
					t.Fatalf("write policy: %v", err)
				}
				if _, err := LoadPolicy(path); err == nil {
					t.Errorf("LoadPolicy() with %s should fail", tc.name)
				}
			})
		}
	})
}

func TestPolicyTooLargeDisabled(t *testing.T) {
	policy := &Policy{MaxFileSizeBytes: 0}
	if policy.TooLarge(1 << 30) {
		t.Error("TooLarge() with zero cap should never trigger")
	}
}
