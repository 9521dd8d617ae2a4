// Package naming holds the path conventions used when provisioning on the
// local host: where a guest path is emulated, how "~" expands and where
// generated shell scripts are uploaded.
package naming

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultGuestHome is the home directory of the default guest user.
const DefaultGuestHome = "/home/vagrant"

// ScriptPrefix starts the file name of every generated shell script.
const ScriptPrefix = "kiln-shell-"

// ExpandHome replaces a leading "~" in path with home.
//
// Example: ExpandHome("~/src", "/home/me") → /home/me/src
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// EmulationPath maps a guest path to the local path that stands in for it.
// A guest path under guestHome moves under hostHome; any other path is used
// as is. Relative results are made absolute.
//
// Example: EmulationPath("/home/vagrant/src", "/home/vagrant", "/home/me") → /home/me/src
func EmulationPath(guest, guestHome, hostHome string) (string, error) {
	path := ExpandHome(guest, hostHome)
	guestHome = strings.TrimSuffix(guestHome, "/")
	if guestHome != "" && (path == guestHome || strings.HasPrefix(path, guestHome+"/")) {
		path = hostHome + strings.TrimPrefix(path, guestHome)
	}
	return filepath.Abs(path)
}

// UploadPath returns a fresh, unpredictable script path inside dir. An empty
// dir means the system temporary directory.
//
// Format: {dir}/kiln-shell-{uuid}
func UploadPath(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, ScriptPrefix+uuid.NewString())
}
