// Package blobstore persists attachment payloads. Complaints reference files
// only by the handle returned from Save, so the backing store can be swapped
// without touching the lifecycle code.
package blobstore

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store abstracts binary attachment storage.
type Store interface {
	// Save persists the payload and returns the handle it is stored under.
	Save(name string, data []byte) (string, error)
	// URL returns the public URL for a stored handle.
	URL(handle string) string
}

// Disk is a Store writing files under a local directory, served as static
// content by the API layer.
type Disk struct {
	Dir     string
	BaseURL string
}

// NewDisk creates the upload directory if needed and returns a disk store.
func NewDisk(dir, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &Disk{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save writes the payload under a random name, keeping the original
// extension so content types can be guessed when serving.
func (d *Disk) Save(name string, data []byte) (string, error) {
	handle := uuid.New().String() + strings.ToLower(filepath.Ext(name))
	path := filepath.Join(d.Dir, handle)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return handle, nil
}

func (d *Disk) URL(handle string) string {
	if handle == "" {
		return ""
	}
	return d.BaseURL + "/" + handle
}

// Decode decodes an inline base64 payload. Payloads may carry a data-URI
// scheme marker ("data:image/png;base64,....") which is stripped before
// decoding.
func Decode(payload string) ([]byte, error) {
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		payload = payload[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return data, nil
}
