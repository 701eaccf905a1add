package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	uploadsSubdir = "static/uploads"
	resultsSubdir = "static/results"
)

// LocalStorage keeps originals and annotated results under
// <baseDir>/static/{uploads,results}. All returned paths are relative to
// baseDir and use forward slashes regardless of host conventions; the same
// strings end up in the database and in served URLs.
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	for _, sub := range []string{uploadsSubdir, resultsSubdir} {
		if err := os.MkdirAll(filepath.Join(baseDir, filepath.FromSlash(sub)), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// UploadFilename builds the collision-resistant stored name for an upload:
// a second-resolution timestamp plus the sanitized original name.
func UploadFilename(original string, now time.Time) string {
	return fmt.Sprintf("image_%s_%s", now.Format("20060102_150405"), SanitizeFilename(original))
}

// SanitizeFilename keeps letters, digits, dot, dash and underscore, maps
// everything else to underscore and strips leading dots.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

func (ls *LocalStorage) SaveUpload(r io.Reader, filename string) (string, error) {
	return ls.save(uploadsSubdir, filename, r)
}

func (ls *LocalStorage) SaveResult(filename string, data []byte) (string, error) {
	return ls.save(resultsSubdir, filename, bytes.NewReader(data))
}

func (ls *LocalStorage) save(subdir, filename string, r io.Reader) (string, error) {
	rel := path.Join(subdir, filename)
	fullPath, err := ls.absPath(rel)
	if err != nil {
		return "", err
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return rel, nil
}

// Remove deletes the file at the given relative path. The caller decides
// whether a missing file matters; os.IsNotExist identifies that case.
func (ls *LocalStorage) Remove(rel string) error {
	fullPath, err := ls.absPath(rel)
	if err != nil {
		return err
	}
	return os.Remove(fullPath)
}

func (ls *LocalStorage) Exists(rel string) bool {
	fullPath, err := ls.absPath(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

// StaticDir is the directory the /static/ file server is rooted at.
func (ls *LocalStorage) StaticDir() string {
	return filepath.Join(ls.baseDir, "static")
}

func (ls *LocalStorage) absPath(rel string) (string, error) {
	clean := path.Clean(rel)
	if strings.Contains(clean, "..") || path.IsAbs(clean) {
		return "", fmt.Errorf("invalid path")
	}
	return filepath.Join(ls.baseDir, filepath.FromSlash(clean)), nil
}
