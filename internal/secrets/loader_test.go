package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	t.Setenv("TEAM_BUILDER_TEST_KEY", "from-env")

	got, err := Load(Source{Name: "api key", File: path, Value: "inline", Env: "TEAM_BUILDER_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadFallsBackToEnv(t *testing.T) {
	t.Setenv("TEAM_BUILDER_TEST_KEY", " from-env ")

	got, err := Load(Source{Name: "api key", Env: "TEAM_BUILDER_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("expected env secret, got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("   "), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "nothing configured", src: Source{Name: "api key"}, expect: "api key is not configured"},
		{name: "empty file", src: Source{File: empty}, expect: "is empty"},
		{name: "missing file", src: Source{File: filepath.Join(t.TempDir(), "missing")}, expect: "reading secret from file"},
		{name: "unset env", src: Source{Name: "api key", Env: "TEAM_BUILDER_UNSET_KEY"}, expect: "checked TEAM_BUILDER_UNSET_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.expect) {
				t.Fatalf("expected error to contain %q, got %v", tt.expect, err)
			}
		})
	}
}
