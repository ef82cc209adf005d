/*
filestore.go - Local-disk document storage

PURPOSE:
  Stores uploaded candidate and job documents (resumes, photos, attachments)
  on the local filesystem and hands back the URL clients use to fetch them.
  Files are renamed to a uuid so caller-supplied names never touch the disk.

LAYOUT:
  <root>/<uuid><ext>    e.g. ./uploads/6f1c...d2.pdf

URL:
  <baseURL>/<uuid><ext> e.g. /files/6f1c...d2.pdf
  The server mounts <root> at <baseURL> via chi's static handler.

SEE ALSO:
  - api/server.go: Static mount and upload routes
*/
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store saves blobs to a directory and produces their public URLs.
type Store struct {
	root    string
	baseURL string
}

// New creates the store, ensuring the root directory exists.
func New(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create file root: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root returns the directory files are written to.
func (s *Store) Root() string { return s.root }

// Save writes the blob under a uuid name, keeping the original extension,
// and returns the URL to serve it from.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Remove deletes a previously saved file given its URL. Unknown URLs are
// ignored so stale references never block an update.
func (s *Store) Remove(url string) error {
	name, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
