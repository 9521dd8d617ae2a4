package naming

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandHome(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "bare tilde", path: "~", want: "/home/me"},
		{name: "tilde prefix", path: "~/src/app", want: "/home/me/src/app"},
		{name: "absolute path", path: "/opt/app", want: "/opt/app"},
		{name: "tilde user form untouched", path: "~other/x", want: "~other/x"},
		{name: "relative path", path: "src", want: "src"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandHome(tt.path, "/home/me"); got != tt.want {
				t.Errorf("ExpandHome() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmulationPath(t *testing.T) {
	tests := []struct {
		name      string
		guest     string
		guestHome string
		want      string
	}{
		{
			name:      "guest home prefix",
			guest:     "/home/vagrant/src",
			guestHome: DefaultGuestHome,
			want:      "/home/me/src",
		},
		{
			name:      "guest home itself",
			guest:     "/home/vagrant",
			guestHome: DefaultGuestHome,
			want:      "/home/me",
		},
		{
			name:      "guest home with trailing slash",
			guest:     "/home/vagrant/src",
			guestHome: "/home/vagrant/",
			want:      "/home/me/src",
		},
		{
			name:      "similar prefix is not the guest home",
			guest:     "/home/vagrantx/src",
			guestHome: DefaultGuestHome,
			want:      "/home/vagrantx/src",
		},
		{
			name:      "path outside guest home",
			guest:     "/var/www",
			guestHome: DefaultGuestHome,
			want:      "/var/www",
		},
		{
			name:      "tilde guest path",
			guest:     "~/code",
			guestHome: DefaultGuestHome,
			want:      "/home/me/code",
		},
		{
			name:      "path is cleaned",
			guest:     "/home/vagrant/src/../app/",
			guestHome: DefaultGuestHome,
			want:      "/home/me/app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EmulationPath(tt.guest, tt.guestHome, "/home/me")
			if err != nil {
				t.Fatalf("EmulationPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EmulationPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUploadPath(t *testing.T) {
	dir := t.TempDir()

	first := UploadPath(dir)
	second := UploadPath(dir)

	if first == second {
		t.Errorf("UploadPath() returned the same path twice: %s", first)
	}
	if filepath.Dir(first) != dir {
		t.Errorf("UploadPath() = %s, want a path inside %s", first, dir)
	}
	if !strings.HasPrefix(filepath.Base(first), ScriptPrefix) {
		t.Errorf("UploadPath() = %s, want prefix %s", first, ScriptPrefix)
	}

	if got := UploadPath(""); filepath.Dir(got) != filepath.Clean(os.TempDir()) {
		t.Errorf("UploadPath(\"\") = %s, want a path inside %s", got, os.TempDir())
	}
}
