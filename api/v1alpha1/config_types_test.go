package v1alpha1

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/kiln/internal/document"
)

func mustDoc(t *testing.T, src string) *document.Map {
	t.Helper()
	doc, err := document.ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	return doc
}

func TestDecodeConfig(t *testing.T) {
	doc := mustDoc(t, `
project: demo
machines:
  - name: web
    autostart: true
    box: centos/7
    box_version: 1905.1
    ssh: {username: vagrant, insert_key: false}
    providers:
      virtualbox: {memory: 1024, cpus: 2}
      libvirt: {memory: 2048}
    networks:
      - {kind: private_network, ip: dynamic, auto_config: false}
    synced_folders:
      - {host: ~/src, guest: /home/vagrant/src, mount_options: [ro]}
    provisions:
      - {kind: file, name: motd, source: files/motd, target: /etc}
      - kind: shell
        name: install
        inline: yum -y install nginx
        args: [a b, c]
        env: {PORT: 8080}
        privileged: false
`)

	cfg, err := DecodeConfig(doc)
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Project != "demo" || len(cfg.Machines) != 1 {
		t.Fatalf("Unexpected config: %+v", cfg)
	}

	m := cfg.Machines[0]
	if !m.IsAutostart() {
		t.Error("Expected autostart true")
	}
	if m.BoxVersion != "1905.1" {
		t.Errorf("Expected box_version 1905.1, got %q", m.BoxVersion)
	}
	if m.SSH == nil || m.SSH.InsertKey == nil || *m.SSH.InsertKey {
		t.Errorf("Expected ssh.insert_key false, got %+v", m.SSH)
	}
	if diff := cmp.Diff([]string{"virtualbox", "libvirt"}, m.Providers.Keys()); diff != "" {
		t.Errorf("Provider order mismatch (-want +got):\n%s", diff)
	}

	net := m.Networks[0]
	if net.Kind != NetworkPrivateNetwork || net.IP != "dynamic" || net.Options["auto_config"] != false {
		t.Errorf("Unexpected network: %+v", net)
	}
	if diff := cmp.Diff([]string{"ro"}, m.SyncedFolders[0].MountOptions); diff != "" {
		t.Errorf("MountOptions mismatch (-want +got):\n%s", diff)
	}

	file, shell := m.Provisions[0], m.Provisions[1]
	if file.Run != RunOnce || shell.Run != RunOnce {
		t.Errorf("Expected run to default to once, got %q and %q", file.Run, shell.Run)
	}
	if !shell.Args.IsList() {
		t.Fatal("Expected list args")
	}
	if diff := cmp.Diff([]string{"a b", "c"}, shell.Args.List); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
	if shell.Env["PORT"] != "8080" {
		t.Errorf("Expected env PORT 8080, got %q", shell.Env["PORT"])
	}
	if shell.IsPrivileged() {
		t.Error("Expected privileged false")
	}
}

func TestDecodeMachine_TypeMismatch(t *testing.T) {
	doc := mustDoc(t, "name: web\nprovisions: {kind: shell}\n")
	if _, err := DecodeMachine(doc); err == nil {
		t.Error("Expected error decoding a mapping into provisions")
	}
}

func TestDecodeConfig_NamesFailingMachine(t *testing.T) {
	doc := mustDoc(t, "machines:\n  - name: web\n  - name: db\n    networks: {kind: public_network}\n")
	_, err := DecodeConfig(doc)
	if err == nil || !strings.Contains(err.Error(), `machine "db"`) {
		t.Errorf("DecodeConfig() error = %v, want it to name machine db", err)
	}
}

func TestDecodeConfig_InlinePresence(t *testing.T) {
	doc := mustDoc(t, `
machines:
  - name: web
    provisions:
      - {kind: shell, inline: ""}
      - {kind: shell, path: setup.sh}
`)
	cfg, err := DecodeConfig(doc)
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	steps := cfg.Machines[0].Provisions
	if steps[0].Inline == nil || *steps[0].Inline != "" {
		t.Errorf("an empty inline script should be set, got %v", steps[0].Inline)
	}
	if steps[1].Inline != nil {
		t.Errorf("an absent inline script should be nil, got %q", *steps[1].Inline)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestArgs_YAML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantRaw  string
		wantList []string
		isList   bool
		wantErr  bool
	}{
		{name: "raw string", input: `args: "--force -v"`, wantRaw: "--force -v"},
		{name: "list", input: `args: [x, "y z"]`, wantList: []string{"x", "y z"}, isList: true},
		{name: "absent", input: `other: 1`},
		{name: "null", input: `args: null`},
		{name: "mapping", input: `args: {a: 1}`, wantErr: true},
		{name: "nested list", input: `args: [[a]]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				Args Args `yaml:"args"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Args.Raw != tt.wantRaw {
				t.Errorf("Raw = %q, want %q", got.Args.Raw, tt.wantRaw)
			}
			if diff := cmp.Diff(tt.wantList, got.Args.List); diff != "" {
				t.Errorf("List mismatch (-want +got):\n%s", diff)
			}
			if got.Args.IsList() != tt.isList {
				t.Errorf("IsList() = %v, want %v", got.Args.IsList(), tt.isList)
			}
		})
	}
}

func TestArgs_Marshal(t *testing.T) {
	p := Provision{Kind: ProvisionShell, Inline: InlineScript("true"), Args: ListArgs("a", "b")}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff([]any{"a", "b"}, got["args"]); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	out, err := yaml.Marshal(Provision{Kind: ProvisionShell, Inline: InlineScript("true")})
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if string(out) != "kind: shell\ninline: \"true\"\n" {
		t.Errorf("Expected empty args to be omitted, got:\n%s", out)
	}
}

func TestMachine_DeepCopy(t *testing.T) {
	autostart := true
	privileged := false
	m := &Machine{
		Name:          "web",
		Autostart:     &autostart,
		SSH:           &SSH{Username: "vagrant"},
		Networks:      []Network{{Kind: NetworkForwardedPort, Options: map[string]any{"guest": 80}}},
		SyncedFolders: []SyncedFolder{{Host: "/src", Guest: "/home/vagrant/src", MountOptions: []string{"ro"}}},
		Provisions: []Provision{{
			Kind:       ProvisionShell,
			Inline:     InlineScript("true"),
			Args:       ListArgs("a"),
			Env:        map[string]string{"A": "1"},
			Privileged: &privileged,
		}},
	}

	copied := m.DeepCopy()
	*copied.Autostart = false
	copied.SSH.Username = "changed"
	copied.Networks[0].Options["guest"] = 8080
	copied.SyncedFolders[0].MountOptions[0] = "rw"
	copied.Provisions[0].Args.List[0] = "changed"
	copied.Provisions[0].Env["A"] = "2"
	*copied.Provisions[0].Privileged = true

	if !*m.Autostart {
		t.Error("Modifying copy.Autostart affected original")
	}
	if m.SSH.Username != "vagrant" {
		t.Error("Modifying copy.SSH affected original")
	}
	if m.Networks[0].Options["guest"] != 80 {
		t.Error("Modifying copy.Networks affected original")
	}
	if m.SyncedFolders[0].MountOptions[0] != "ro" {
		t.Error("Modifying copy.SyncedFolders affected original")
	}
	p := m.Provisions[0]
	if p.Args.List[0] != "a" || p.Env["A"] != "1" || *p.Privileged {
		t.Error("Modifying copy.Provisions affected original")
	}
}
