// Package vault provides filesystem access to a markdown vault: sibling
// listings, renames, and binary and note I/O.
package vault

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

var imageExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true,
	"avif": true, "bmp": true, "svg": true,
}

// defaultAttachmentExtensions are the extensions scanned as attachments when
// the caller does not narrow them.
var defaultAttachmentExtensions = []string{
	"png", "jpg", "jpeg", "gif", "webp", "avif", "bmp", "svg",
	"pdf", "mp3", "mp4", "mov", "zip",
}

// Vault is rooted at a directory; all paths in and out are vault-relative
// with forward slashes.
type Vault struct {
	root       string
	includeExt map[string]bool
}

// New opens a vault rooted at dir.
func New(dir string) (*Vault, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root is not a directory: %s", dir)
	}

	extMap := make(map[string]bool)
	for _, ext := range defaultAttachmentExtensions {
		extMap[ext] = true
	}

	return &Vault{root: dir, includeExt: extMap}, nil
}

// Root returns the vault root directory.
func (v *Vault) Root() string {
	return v.root
}

// Abs converts a vault-relative path to an absolute one.
func (v *Vault) Abs(rel string) string {
	return filepath.Join(v.root, filepath.FromSlash(rel))
}

// ListSiblingNames lists the file names present in a vault directory. The
// listing is read fresh on every call, never cached, so rapid successive
// renames each see the latest state.
func (v *Vault) ListSiblingNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(v.Abs(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Rename moves a file to a new vault-relative path. It refuses to clobber
// an existing file, which catches listings gone stale between resolution
// and commit.
func (v *Vault) Rename(oldPath, newPath string) error {
	dst := v.Abs(newPath)
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("rename target already exists: %s", newPath)
	}
	if err := os.Rename(v.Abs(oldPath), dst); err != nil {
		return fmt.Errorf("failed to rename %s: %w", oldPath, err)
	}
	return nil
}

// ReadBinary reads an attachment's bytes.
func (v *Vault) ReadBinary(path string) ([]byte, error) {
	data, err := os.ReadFile(v.Abs(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// WriteBinary writes an attachment's bytes. The write goes to a temporary
// sibling first and is renamed into place, so a crash never leaves a
// half-written attachment under the final name.
func (v *Vault) WriteBinary(path string, data []byte) error {
	abs := v.Abs(path)
	part := abs + ".part"

	if err := os.WriteFile(part, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(part, abs); err != nil {
		os.Remove(part)
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

// Remove deletes a file from the vault.
func (v *Vault) Remove(path string) error {
	if err := os.Remove(v.Abs(path)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// ReadNote reads a markdown note as a string.
func (v *Vault) ReadNote(path string) (string, error) {
	data, err := v.ReadBinary(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteNote writes a markdown note.
func (v *Vault) WriteNote(path, content string) error {
	return v.WriteBinary(path, []byte(content))
}

// Stat returns the Attachment record for a vault-relative path.
func (v *Vault) Stat(rel string) (types.Attachment, error) {
	info, err := os.Stat(v.Abs(rel))
	if err != nil {
		return types.Attachment{}, fmt.Errorf("failed to stat %s: %w", rel, err)
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(rel)), ".")
	return types.Attachment{
		Path:      rel,
		Name:      path.Base(rel),
		Dir:       dirOf(rel),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Extension: ext,
		IsImage:   imageExtensions[ext],
	}, nil
}

// ScanAttachments walks the vault and returns every attachment file, sorted
// by path.
func (v *Vault) ScanAttachments() ([]types.Attachment, error) {
	var attachments []types.Attachment

	err := filepath.WalkDir(v.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != v.root {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(p)), ".")
		if !v.includeExt[ext] {
			return nil
		}

		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		a, err := v.Stat(rel)
		if err != nil {
			return nil
		}
		attachments = append(attachments, a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(attachments, func(i, j int) bool {
		return attachments[i].Path < attachments[j].Path
	})
	return attachments, nil
}

// Resolve maps a reference target from a note body to an attachment. Path
// references resolve relative to the note's directory, then the vault root;
// bare names resolve to the first attachment with that base name anywhere in
// the vault, mirroring wiki-style shortest-path lookup.
func (v *Vault) Resolve(target, fromNote string) (types.Attachment, bool) {
	noteDir := dirOf(fromNote)

	candidates := []string{
		path.Join(noteDir, target),
		target,
	}
	for _, c := range candidates {
		if a, err := v.Stat(c); err == nil {
			return a, true
		}
	}

	if !strings.Contains(target, "/") {
		all, err := v.ScanAttachments()
		if err != nil {
			return types.Attachment{}, false
		}
		for _, a := range all {
			if a.Name == target {
				return a, true
			}
		}
	}

	return types.Attachment{}, false
}

func dirOf(rel string) string {
	d := path.Dir(rel)
	if d == "." {
		return ""
	}
	return d
}
