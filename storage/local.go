package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// SavedFile describes an upload written to the local upload directory.
type SavedFile struct {
	Path string
	Hash string
	Size int64
}

// SaveUpload writes r under dir and returns the file path with the SHA-256
// of its content. The file name is prefixed with a timestamp so repeated
// uploads of the same name do not collide.
func SaveUpload(dir, filename string, r io.Reader, now time.Time) (*SavedFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s", now.UTC().Format("20060102T150405.000000000"), filepath.Base(filename))
	dst := filepath.Join(dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, h), r)
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("failed to write upload file: %w", err)
	}

	return &SavedFile{Path: dst, Hash: hex.EncodeToString(h.Sum(nil)), Size: size}, nil
}
