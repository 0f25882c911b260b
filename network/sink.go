package network

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nearshare/protocol/sharing"
)

// PayloadSink stores received files.
type PayloadSink interface {
	SaveFile(ctx context.Context, meta *sharing.FileMetadata, data []byte) (string, error)
}

// DirectorySink writes files into Dir, never overwriting an existing file.
type DirectorySink struct {
	Dir string
}

// SaveFile writes data under a sanitized, unused name and returns the path.
func (s DirectorySink) SaveFile(ctx context.Context, meta *sharing.FileMetadata, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	name := sanitizeFileName(meta.Name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(s.Dir, candidate)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %q: %w", path, err)
		}
		if _, err := file.Write(data); err != nil {
			_ = file.Close()
			return "", fmt.Errorf("write %q: %w", path, err)
		}
		if err := file.Close(); err != nil {
			return "", fmt.Errorf("close %q: %w", path, err)
		}
		return path, nil
	}
}

func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." || base == "" {
		return "file.bin"
	}
	return base
}
