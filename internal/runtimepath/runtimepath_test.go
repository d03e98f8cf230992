package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}

	wantTmp := fmt.Sprintf("/tmp/lwm-runtime-%d", os.Getuid())
	if got != xdg.RuntimeDir && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, xdg.RuntimeDir, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)
	t.Setenv(SocketEnv, "")

	tests := []struct {
		display string
		want    string
	}{
		{display: "", want: "lwm.sock"},
		{display: ":0", want: "lwm-0.sock"},
		{display: ":1.0", want: "lwm-1_0.sock"},
		{display: "host:2", want: "lwm-host_2.sock"},
	}
	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			t.Setenv("DISPLAY", tt.display)
			got, err := SocketPath()
			if err != nil {
				t.Fatalf("SocketPath() error: %v", err)
			}
			if want := filepath.Join(td, tt.want); got != want {
				t.Fatalf("SocketPath() = %q, want %q", got, want)
			}
		})
	}
}

func TestSocketPath_EnvOverride(t *testing.T) {
	t.Setenv(SocketEnv, "/custom/lwm.sock")
	got, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if got != "/custom/lwm.sock" {
		t.Fatalf("SocketPath() = %q, want /custom/lwm.sock", got)
	}
}
