package v1alpha1

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestProvision_Validate(t *testing.T) {
	tests := []struct {
		name      string
		provision Provision
		wantErr   string
	}{
		{
			name:      "valid inline shell",
			provision: Provision{Kind: ProvisionShell, Inline: InlineScript("echo hi")},
		},
		{
			name:      "empty inline shell",
			provision: Provision{Kind: ProvisionShell, Inline: InlineScript("")},
		},
		{
			name:      "valid path shell",
			provision: Provision{Kind: ProvisionShell, Path: "scripts/setup.sh", Run: RunAlways},
		},
		{
			name:      "valid file with target",
			provision: Provision{Kind: ProvisionFile, Source: "motd", Target: "/etc"},
		},
		{
			name:      "shell without script",
			provision: Provision{Kind: ProvisionShell},
			wantErr:   "missing attribute 'inline' or 'path'",
		},
		{
			name:      "shell with both scripts",
			provision: Provision{Kind: ProvisionShell, Inline: InlineScript("true"), Path: "x.sh"},
			wantErr:   "cannot specify both",
		},
		{
			name:      "file without source",
			provision: Provision{Kind: ProvisionFile, Destination: "/etc/motd"},
			wantErr:   "missing attribute 'source'",
		},
		{
			name:      "file without destination",
			provision: Provision{Kind: ProvisionFile, Source: "motd"},
			wantErr:   "missing attribute 'destination'",
		},
		{
			name:      "unknown run policy",
			provision: Provision{Kind: ProvisionShell, Inline: InlineScript("true"), Run: "sometimes"},
			wantErr:   "run must be",
		},
		{
			name:      "unknown kind",
			provision: Provision{Kind: "ansible"},
			wantErr:   `unrecognized provision "ansible"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.provision.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestProvision_Validate_UnsupportedKind(t *testing.T) {
	err := (&Provision{Kind: "puppet"}).Validate()
	var kindErr *UnsupportedKindError
	if !errors.As(err, &kindErr) {
		t.Fatalf("Expected *UnsupportedKindError, got %v", err)
	}
	if kindErr.Category != "provision" || kindErr.Kind != "puppet" {
		t.Errorf("Unexpected error fields: %+v", kindErr)
	}
}

func TestMachine_Validate(t *testing.T) {
	doc := mustDoc(t, "name: web\nproviders: {virtualbox: {}, hyperv: {}}\n")
	m, err := DecodeMachine(doc)
	if err != nil {
		t.Fatalf("DecodeMachine() error = %v", err)
	}

	tests := []struct {
		name    string
		machine Machine
		wantErr string
	}{
		{
			name:    "minimal machine",
			machine: Machine{Name: "web"},
		},
		{
			name:    "missing name",
			machine: Machine{},
			wantErr: "name is required",
		},
		{
			name:    "unresolved inherit",
			machine: Machine{Name: "web", Inherit: "base"},
			wantErr: "was not resolved",
		},
		{
			name:    "unknown provider",
			machine: *m,
			wantErr: `unrecognized provider "hyperv"`,
		},
		{
			name:    "unknown network",
			machine: Machine{Name: "web", Networks: []Network{{Kind: "bridge"}}},
			wantErr: "networks[0]",
		},
		{
			name:    "synced folder without guest",
			machine: Machine{Name: "web", SyncedFolders: []SyncedFolder{{Host: "/src"}}},
			wantErr: "missing 'guest' parameter",
		},
		{
			name:    "bad provision",
			machine: Machine{Name: "web", Provisions: []Provision{{Kind: ProvisionShell}}},
			wantErr: "provisions[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.machine.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_DuplicateNames(t *testing.T) {
	cfg := &Config{Machines: []Machine{{Name: "web"}, {Name: "web"}}}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate machine name") {
		t.Errorf("Validate() error = %v, want duplicate machine name", err)
	}
}

func writeKey(t *testing.T, block *pem.Block) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("Failed to write key: %v", err)
	}
	return path
}

func TestSSH_CheckKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	plain, err := ssh.MarshalPrivateKey(priv, "test")
	if err != nil {
		t.Fatalf("MarshalPrivateKey() error = %v", err)
	}
	protected, err := ssh.MarshalPrivateKeyWithPassphrase(priv, "test", []byte("secret"))
	if err != nil {
		t.Fatalf("MarshalPrivateKeyWithPassphrase() error = %v", err)
	}

	homeKey := writeKey(t, plain)

	garbage := filepath.Join(t.TempDir(), "garbage")
	if err := os.WriteFile(garbage, []byte("not a key"), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "no key configured", path: ""},
		{name: "unencrypted key", path: writeKey(t, plain)},
		{name: "passphrase protected key", path: writeKey(t, protected)},
		{name: "not a key", path: garbage, wantErr: true},
		{name: "missing file", path: filepath.Join(t.TempDir(), "missing"), wantErr: true},
		{name: "home relative key", path: "~/" + filepath.Base(homeKey)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SSH{PrivateKeyPath: tt.path}
			if err := s.CheckKey(filepath.Dir(homeKey)); (err != nil) != tt.wantErr {
				t.Errorf("CheckKey() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMachine_Validate_IgnoresMissingKey(t *testing.T) {
	m := Machine{Name: "web", SSH: &SSH{PrivateKeyPath: "~/.vagrant.d/insecure_private_key"}}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() error = %v, SSH keys are only checked on request", err)
	}
}
