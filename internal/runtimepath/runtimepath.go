package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// SocketEnv overrides the socket path when set.
const SocketEnv = "LWM_SOCKET"

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) the xdg runtime directory, /run/user/<uid> (if present)
// 3) /tmp/lwm-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	if info, err := os.Stat(xdg.RuntimeDir); err == nil && info.IsDir() {
		return xdg.RuntimeDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/lwm-runtime-%d", os.Getuid())
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path. Each X display gets its
// own socket so nested servers do not collide.
func SocketPath() (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	name := "lwm.sock"
	if d := displayName(os.Getenv("DISPLAY")); d != "" {
		name = "lwm-" + d + ".sock"
	}
	return filepath.Join(runtimeDir, name), nil
}

// displayName turns a DISPLAY value such as ":0.0" or "host:1" into a
// file name fragment.
func displayName(display string) string {
	display = strings.TrimSpace(display)
	if display == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '.':
			return '_'
		}
		return r
	}, strings.TrimPrefix(display, ":"))
}
