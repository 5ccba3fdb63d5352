package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()

	root := t.TempDir()
	v, err := New(root)
	if err != nil {
		t.Fatalf("failed to open vault: %v", err)
	}
	return v
}

func writeFile(t *testing.T, v *Vault, rel, content string) {
	t.Helper()

	abs := v.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}

func TestNew_RejectsMissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing vault root")
	}
}

func TestListSiblingNames(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "notes/a.md", "x")
	writeFile(t, v, "notes/pic.png", "x")
	writeFile(t, v, "notes/sub/deep.png", "x")

	names, err := v.ListSiblingNames("notes")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}

	if len(names) != 2 {
		t.Fatalf("expected 2 siblings, got %v", names)
	}
	// Subdirectories are not siblings.
	for _, n := range names {
		if n == "sub" || n == "deep.png" {
			t.Errorf("unexpected sibling %s", n)
		}
	}
}

func TestListSiblingNames_ReadsFreshEveryCall(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "n/one.png", "x")

	first, err := v.ListSiblingNames("n")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}

	writeFile(t, v, "n/two.png", "x")

	second, err := v.ListSiblingNames("n")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}

	if len(second) != len(first)+1 {
		t.Fatalf("second listing should see the new file: %v", second)
	}
}

func TestRename(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "a/old.png", "data")

	if err := v.Rename("a/old.png", "a/new.png"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	if _, err := os.Stat(v.Abs("a/new.png")); err != nil {
		t.Fatal("renamed file missing")
	}
	if _, err := os.Stat(v.Abs("a/old.png")); !os.IsNotExist(err) {
		t.Fatal("old file still present")
	}
}

func TestRename_RefusesToClobber(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "a/old.png", "data")
	writeFile(t, v, "a/new.png", "other")

	if err := v.Rename("a/old.png", "a/new.png"); err == nil {
		t.Fatal("expected error renaming over an existing file")
	}
}

func TestWriteBinaryLeavesNoPartFile(t *testing.T) {
	v := newTestVault(t)

	if err := v.WriteBinary("img.png", []byte{1, 2, 3}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := v.ReadBinary("img.png")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("unexpected data: %v", data)
	}

	if _, err := os.Stat(v.Abs("img.png.part")); !os.IsNotExist(err) {
		t.Fatal("temporary part file left behind")
	}
}

func TestStat(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "media/Photo 1.PNG", "data")

	a, err := v.Stat("media/Photo 1.PNG")
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}

	if a.Name != "Photo 1.PNG" || a.Dir != "media" {
		t.Fatalf("unexpected attachment: %+v", a)
	}
	if a.Extension != "png" || !a.IsImage {
		t.Fatalf("expected lowercase png image, got %+v", a)
	}
}

func TestScanAttachments(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "note.md", "x")
	writeFile(t, v, "b.png", "x")
	writeFile(t, v, "sub/a.jpg", "x")
	writeFile(t, v, ".obsidian/cache.png", "x")

	got, err := v.ScanAttachments()
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 attachments, got %+v", got)
	}
	// Sorted by path; markdown files and dot directories are skipped.
	if got[0].Path != "b.png" || got[1].Path != "sub/a.jpg" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestResolve(t *testing.T) {
	v := newTestVault(t)
	writeFile(t, v, "journal/note.md", "x")
	writeFile(t, v, "journal/pic.png", "x")
	writeFile(t, v, "assets/far.png", "x")

	// Relative to the note's directory.
	if a, ok := v.Resolve("pic.png", "journal/note.md"); !ok || a.Path != "journal/pic.png" {
		t.Fatalf("failed to resolve sibling: %+v ok=%v", a, ok)
	}

	// Vault-root relative path.
	if a, ok := v.Resolve("assets/far.png", "journal/note.md"); !ok || a.Path != "assets/far.png" {
		t.Fatalf("failed to resolve rooted path: %+v ok=%v", a, ok)
	}

	// Bare name found anywhere in the vault.
	if a, ok := v.Resolve("far.png", "journal/note.md"); !ok || a.Path != "assets/far.png" {
		t.Fatalf("failed to resolve bare name: %+v ok=%v", a, ok)
	}

	if _, ok := v.Resolve("missing.png", "journal/note.md"); ok {
		t.Fatal("resolved a missing attachment")
	}
}
