//go:generate go run go.uber.org/mock/mockgen -source=disk.go -destination=../mocks/mock_object_store.go -package=mocks
// Package storage is the object store for message attachments.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// URLPrefix is where stored objects are served from.
const URLPrefix = "/uploads/multimedia/"

type IObjectStore interface {
	Save(originalName string, r io.Reader) (string, error)
}

// DiskStore writes attachments under a local directory and returns
// retrievable URLs rooted at URLPrefix.
type DiskStore struct {
	root string
	log  *slog.Logger
}

func NewDiskStore(root string, log *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &DiskStore{root: root, log: log}, nil
}

// Save stores the attachment under a collision-resistant name: nanosecond
// timestamp plus a UUID, keeping the original extension. When the upload has
// no extension, the sniffed content type provides one.
func (s *DiskStore) Save(originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString(), filepath.Ext(originalName))
	path := filepath.Join(s.root, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	written, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("writing upload: %w", err)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("detecting upload type: %w", err)
	}
	if filepath.Ext(name) == "" && mtype.Extension() != "" {
		renamed := name + mtype.Extension()
		if err := os.Rename(path, filepath.Join(s.root, renamed)); err != nil {
			return "", fmt.Errorf("renaming upload: %w", err)
		}
		name = renamed
	}

	s.log.Debug("Attachment stored",
		"name", name, "bytes", written, "content_type", mtype.String())
	return URLPrefix + name, nil
}

// Dir returns the directory the static file server should serve.
func (s *DiskStore) Dir() string { return s.root }
