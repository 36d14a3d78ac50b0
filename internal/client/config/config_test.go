package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	c, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if c != Default() {
		t.Fatalf("got %+v", c)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}
	again, err := Read(path)
	if err != nil || again != c {
		t.Fatalf("re-read %+v err=%v", again, err)
	}
}

func TestReadOverridesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	raw := "[Connection]\nName = \"bot-7\"\n\n[Meshing]\nWorkers = 2\nQueueCap = 0\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	d := Default()
	if c.Connection.Name != "bot-7" || c.Meshing.Workers != 2 {
		t.Fatalf("overrides lost: %+v", c)
	}
	if c.Meshing.QueueCap != d.Meshing.QueueCap || c.Connection.ServerURL != d.Connection.ServerURL {
		t.Fatalf("defaults not applied: %+v", c)
	}
}
