package network

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nearshare/protocol/sharing"
)

func TestBundleIntroductionKeepsOrderAndUniqueIDs(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(photo, []byte("not really a png"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	bundle := NewBundle(NewPayloadIDs())
	if err := bundle.AddFile(photo); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}
	if err := bundle.AddText("https://example.com/a?b=c"); err != nil {
		t.Fatalf("AddText failed: %v", err)
	}
	if err := bundle.AddText("plain words"); err != nil {
		t.Fatalf("AddText failed: %v", err)
	}
	if err := bundle.AddWifi("HomeNet", sharing.WifiCredentialsMetadata_WPA_PSK, "secret", false); err != nil {
		t.Fatalf("AddWifi failed: %v", err)
	}
	if bundle.Len() != 4 {
		t.Fatalf("Len = %d, want 4", bundle.Len())
	}

	intro := bundle.introduction().GetIntroduction()
	file := intro.FileMetadata[0]
	if file.Name != "photo.png" || file.Size != 16 || file.MimeType != "image/png" || file.Type != sharing.FileMetadata_IMAGE {
		t.Fatalf("unexpected file metadata %+v", file)
	}

	kinds := []sharing.TextMetadata_Type{intro.TextMetadata[0].Type, intro.TextMetadata[1].Type}
	if diff := cmp.Diff([]sharing.TextMetadata_Type{sharing.TextMetadata_URL, sharing.TextMetadata_TEXT}, kinds); diff != "" {
		t.Fatalf("text kinds mismatch (-want +got):\n%s", diff)
	}

	seen := make(map[int64]bool)
	ids := []int64{
		file.PayloadId, file.Id,
		intro.TextMetadata[0].PayloadId, intro.TextMetadata[0].Id,
		intro.TextMetadata[1].PayloadId, intro.TextMetadata[1].Id,
		intro.WifiCredentialsMetadata[0].PayloadId, intro.WifiCredentialsMetadata[0].Id,
	}
	for _, id := range ids {
		if id <= 0 || seen[id] {
			t.Fatalf("id %d is not positive and unique in %v", id, ids)
		}
		seen[id] = true
	}
}

func TestBundleRejectsInvalidEntries(t *testing.T) {
	bundle := NewBundle(nil)
	if err := bundle.AddFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if err := bundle.AddFile(t.TempDir()); err == nil {
		t.Fatalf("expected error for directory")
	}
	if err := bundle.AddText(""); err == nil {
		t.Fatalf("expected error for empty text")
	}
	if err := bundle.AddWifi("", sharing.WifiCredentialsMetadata_OPEN, "", false); err == nil {
		t.Fatalf("expected error for empty ssid")
	}
	if bundle.Len() != 0 {
		t.Fatalf("invalid entries were queued")
	}
}

func TestTextTitleTruncatesLongText(t *testing.T) {
	long := strings.Repeat("é", 100)
	title := textTitle(long)
	if !strings.HasSuffix(title, "…") || len([]rune(title)) != textTitleRunes+1 {
		t.Fatalf("unexpected title %q", title)
	}
	if textTitle("short") != "short" {
		t.Fatalf("short text should be its own title")
	}
}

func TestSummarize(t *testing.T) {
	intro := &sharing.IntroductionFrame{
		FileMetadata:            []*sharing.FileMetadata{{Name: "a.txt"}, {Name: "b.txt"}},
		TextMetadata:            []*sharing.TextMetadata{{TextTitle: "hello", Type: sharing.TextMetadata_TEXT}},
		WifiCredentialsMetadata: []*sharing.WifiCredentialsMetadata{{Ssid: "Cafe"}},
	}
	want := `2 files, text "hello", wifi "Cafe"`
	if got := summarize(intro); got != want {
		t.Fatalf("summarize = %q, want %q", got, want)
	}
}

func TestPayloadIDsIncrease(t *testing.T) {
	ids := NewPayloadIDs()
	prev := ids.Next()
	for i := 0; i < 100; i++ {
		next := ids.Next()
		if next != prev+1 || next <= 0 {
			t.Fatalf("id %d after %d", next, prev)
		}
		prev = next
	}
}
