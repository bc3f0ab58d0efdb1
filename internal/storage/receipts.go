package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"fuelapi/internal/apperr"
)

// ReceiptStore is the gateway between receipt ingestion and the object store.
// Object keys are always flat: "<folder>/<uuid>_<filename>", with the folder
// and filename free of slashes. Delete relies on that shape.
type ReceiptStore struct {
	store   Storage
	baseURL string
	maxRead int64
	newID   func() string
}

// NewReceiptStore returns a gateway that writes through store and publishes
// object URLs under baseURL. maxRead caps how many bytes Fetch will read.
func NewReceiptStore(store Storage, baseURL string, maxRead int64) *ReceiptStore {
	return &ReceiptStore{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxRead: maxRead,
		newID:   uuid.NewString,
	}
}

// Put uploads the image under a fresh key in folder and returns its URL.
func (g *ReceiptStore) Put(ctx context.Context, folder string, r io.Reader, size int64, filename, contentType string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return "", apperr.Validation(eris.New("storage folder is required"))
	}
	if r == nil {
		return "", apperr.Validation(eris.New("image reader is nil"))
	}

	key := sanitizeSegment(folder) + "/" + g.newID() + "_" + sanitizeSegment(filename)
	info, err := g.store.Put(ctx, key, r, PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return "", apperr.Storage(eris.Wrapf(err, "upload receipt %s", key))
	}
	if info.Key != "" {
		key = info.Key
	}
	return g.URL(key), nil
}

// URL returns the public URL of key.
func (g *ReceiptStore) URL(key string) string {
	return g.baseURL + "/" + key
}

// KeyFromURL reverses URL strictly. Any URL not issued under this gateway's
// base fails with an invalid-reference error.
func (g *ReceiptStore) KeyFromURL(rawURL string) (string, error) {
	key, ok := strings.CutPrefix(rawURL, g.baseURL+"/")
	if !ok || key == "" || strings.HasPrefix(key, "/") {
		return "", apperr.InvalidReference(eris.Errorf("url %q does not belong to %s", rawURL, g.baseURL))
	}
	if strings.ContainsAny(key, "?#") {
		return "", apperr.InvalidReference(eris.Errorf("url %q carries a query or fragment", rawURL))
	}
	return key, nil
}

// Fetch downloads the object behind rawURL.
func (g *ReceiptStore) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	key, err := g.KeyFromURL(rawURL)
	if err != nil {
		return nil, err
	}

	rc, _, err := g.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, apperr.InvalidReference(eris.Errorf("receipt %s does not exist", key))
		}
		return nil, apperr.Storage(eris.Wrapf(err, "get receipt %s", key))
	}
	defer rc.Close()

	var buf bytes.Buffer
	src := io.Reader(rc)
	if g.maxRead > 0 {
		src = io.LimitReader(rc, g.maxRead+1)
	}
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, apperr.Storage(eris.Wrapf(err, "read receipt %s", key))
	}
	if g.maxRead > 0 && int64(buf.Len()) > g.maxRead {
		return nil, apperr.Validation(eris.Errorf("receipt %s exceeds %d bytes", key, g.maxRead))
	}
	return buf.Bytes(), nil
}

// Delete removes the object behind rawURL. The key is rebuilt from the last
// two path segments only, which is correct for keys written by Put.
func (g *ReceiptStore) Delete(ctx context.Context, rawURL string) error {
	key, err := deleteKey(rawURL)
	if err != nil {
		return err
	}
	if err := g.store.Delete(ctx, key); err != nil {
		return apperr.Storage(eris.Wrapf(err, "delete receipt %s", key))
	}
	return nil
}

func deleteKey(rawURL string) (string, error) {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	name := path.Base(rawURL)
	folder := path.Base(path.Dir(rawURL))
	if name == "" || name == "." || name == "/" || folder == "" || folder == "." || folder == "/" || strings.HasSuffix(folder, ":") {
		return "", apperr.InvalidReference(eris.Errorf("cannot derive object key from %q", rawURL))
	}
	return folder + "/" + name, nil
}

// sanitizeSegment keeps keys flat and URL-safe.
func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "receipt"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
