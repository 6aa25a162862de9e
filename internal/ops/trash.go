package ops

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// TrashItem is the metadata recorded next to a trashed file, sufficient to
// restore it later. Host platforms with no user-level trash facility fall
// back to this local directory instead.
type TrashItem struct {
	Name      string    `json:"name"`
	TrashPath string    `json:"trash_path"`
	OrigPath  string    `json:"orig_path"`
	DeletedAt time.Time `json:"deleted_at"`
	IsDir     bool      `json:"is_dir"`
}

// trashDir resolves the local trash directory, preferring the XDG data
// location on Unix-like systems.
func trashDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "sweepcore", "trash")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "sweepcore", "trash")
	}
	return "./.sweepcore_trash"
}

func uniqueSuffix() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("-%d", time.Now().UnixNano())
	}
	return "-" + hex.EncodeToString(b)
}

// moveToTrash relocates src into the trash directory, preserving its
// basename and disambiguating with a short suffix on collision. It tries a
// rename first and falls back to a recursive copy-then-remove across
// devices, same as a cross-filesystem move.
func moveToTrash(src string) (*TrashItem, error) {
	dir := trashDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	base := filepath.Base(src)
	dst := filepath.Join(dir, base)
	if _, err := os.Stat(dst); err == nil {
		dst += uniqueSuffix()
	}

	info, err := os.Lstat(src)
	if err != nil {
		return nil, err
	}
	isDir := info.IsDir()

	if err := os.Rename(src, dst); err == nil {
		ti := &TrashItem{Name: base, TrashPath: dst, OrigPath: src, DeletedAt: time.Now(), IsDir: isDir}
		_ = writeTrashMeta(ti)
		return ti, nil
	}

	if isDir {
		if err := copyTree(src, dst); err != nil {
			return nil, err
		}
	} else if err := copyFileContents(src, dst, info); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(src); err != nil {
		return nil, err
	}

	ti := &TrashItem{Name: base, TrashPath: dst, OrigPath: src, DeletedAt: time.Now(), IsDir: isDir}
	_ = writeTrashMeta(ti)
	return ti, nil
}

// restoreFromTrash moves a trashed item back to its original location,
// disambiguating with a suffix if something now occupies that path.
func restoreFromTrash(ti *TrashItem) error {
	if ti == nil {
		return fmt.Errorf("no trash item to restore")
	}

	dst := ti.OrigPath
	if _, err := os.Stat(dst); err == nil {
		dst += uniqueSuffix()
	}

	if err := os.Rename(ti.TrashPath, dst); err == nil {
		_ = os.Remove(metaPath(ti.TrashPath))
		return nil
	}

	info, err := os.Lstat(ti.TrashPath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		if err := copyTree(ti.TrashPath, dst); err != nil {
			return err
		}
	} else if err := copyFileContents(ti.TrashPath, dst, info); err != nil {
		return err
	}
	if err := os.RemoveAll(ti.TrashPath); err != nil {
		return err
	}
	_ = os.Remove(metaPath(ti.TrashPath))
	return nil
}

func metaPath(trashPath string) string { return trashPath + ".meta.json" }

func writeTrashMeta(ti *TrashItem) error {
	b, err := json.Marshal(ti)
	if err != nil {
		return err
	}
	return os.WriteFile(metaPath(ti.TrashPath), b, 0o644)
}

func copyTree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		s := filepath.Join(src, entry.Name())
		d := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyTree(s, d); err != nil {
				return err
			}
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if err := copyFileContents(s, d, info); err != nil {
			return err
		}
	}
	return nil
}

func copyFileContents(src, dst string, info fs.FileInfo) error {
	input, err := os.Open(src)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer output.Close()

	if _, err := io.Copy(output, input); err != nil {
		return err
	}
	return output.Close()
}
