package network

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"nearshare/protocol/sharing"
)

func TestDirectorySinkNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	sink := DirectorySink{Dir: dir}
	meta := &sharing.FileMetadata{Name: "notes.txt"}

	first, err := sink.SaveFile(context.Background(), meta, []byte("one"))
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	second, err := sink.SaveFile(context.Background(), meta, []byte("two"))
	if err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	if first != filepath.Join(dir, "notes.txt") || second != filepath.Join(dir, "notes (1).txt") {
		t.Fatalf("unexpected paths %q, %q", first, second)
	}
	raw, err := os.ReadFile(first)
	if err != nil || string(raw) != "one" {
		t.Fatalf("first file = %q, %v", raw, err)
	}
}

func TestDirectorySinkStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	sink := DirectorySink{Dir: dir}

	cases := map[string]string{
		"../../etc/passwd":  "passwd",
		`..\..\evil.exe`:    "evil.exe",
		"":                  "file.bin",
		"..":                "file.bin",
		"nested/dir/a.json": "a.json",
	}
	for name, want := range cases {
		path, err := sink.SaveFile(context.Background(), &sharing.FileMetadata{Name: name}, nil)
		if err != nil {
			t.Fatalf("SaveFile(%q) failed: %v", name, err)
		}
		if filepath.Dir(path) != dir {
			t.Fatalf("SaveFile(%q) escaped to %q", name, path)
		}
		if base := filepath.Base(path); base != want && filepath.Ext(base) != filepath.Ext(want) {
			t.Fatalf("SaveFile(%q) wrote %q, want %q", name, base, want)
		}
	}
}
