package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestReadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	content := `{
  "document": {
    "nodes": [
      {"id": "s1", "x": 0, "y": 0, "width": 200, "height": 120},
      {"id": "n1", "parent": "s1", "x": 5, "y": 5, "width": 40, "height": 20}
    ],
    "edges": [{"id": "e1", "source": "n1", "target": "s1"}]
  },
  "chrome": {"s1": {"padding": 10, "header_height": 20}},
  "touched": ["s1"]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := readSnapshot(path)
	if err != nil {
		t.Fatalf("readSnapshot() error = %v", err)
	}
	if len(snap.Document.Nodes) != 2 || len(snap.Document.Edges) != 1 {
		t.Errorf("document = %+v", snap.Document)
	}
	if snap.Chrome["s1"].HeaderHeight != 20 {
		t.Errorf("chrome = %+v", snap.Chrome)
	}
	if len(snap.Touched) != 1 || snap.Touched[0] != "s1" {
		t.Errorf("touched = %v", snap.Touched)
	}
	if snap.Viewport != nil {
		t.Error("absent viewport should decode as nil")
	}
}

func TestReadSnapshotErrors(t *testing.T) {
	if _, err := readSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readSnapshot(path); err == nil {
		t.Error("malformed JSON should error")
	}
}

func TestResolveCommandEndToEnd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	snapPath := filepath.Join(dir, "snap.json")
	outPath := filepath.Join(dir, "geometry.json")
	content := `{
  "document": {
    "nodes": [
      {"id": "s1", "x": 10, "y": 10, "width": 200, "height": 150},
      {"id": "n1", "parent": "s1", "x": 5, "y": 5, "width": 40, "height": 40}
    ]
  },
  "chrome": {"s1": {"padding": 10, "header_height": 20}}
}`
	if err := os.WriteFile(snapPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"resolve", snapPath, "-o", outPath, "--no-cache"})
	if err := root.Execute(); err != nil {
		t.Fatalf("resolve command failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var geo struct {
		Nodes map[string]struct {
			Position struct{ X, Y float64 } `json:"position"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(data, &geo); err != nil {
		t.Fatal(err)
	}
	n1 := geo.Nodes["n1"]
	if n1.Position.X != 25 || n1.Position.Y != 45 {
		t.Errorf("n1 position = %+v, want (25, 45)", n1.Position)
	}
}
