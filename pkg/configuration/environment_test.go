package configuration

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv_LoadsExistingFilesOnly(t *testing.T) {
	tmp := t.TempDir()

	envFile := filepath.Join(tmp, ".env.local")
	if err := os.WriteFile(envFile, []byte("VANTAGE_TEST_ENV_LOAD=ok\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", envFile, err)
	}

	_ = os.Unsetenv("VANTAGE_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{filepath.Join(tmp, ".env"), envFile})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("VANTAGE_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded, got %q", got)
	}
}

func TestLoadEnv_NoFiles(t *testing.T) {
	tmp := t.TempDir()
	n, err := LoadEnv([]string{filepath.Join(tmp, ".env")})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 env files loaded, got %d", n)
	}
}
