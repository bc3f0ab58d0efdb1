package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fuelapi/internal/apperr"
	"fuelapi/internal/config"
	"fuelapi/internal/storage"
	storeMocks "fuelapi/internal/storage/mocks"
)

const baseURL = "https://receipts-bucket.s3.ap-south-1.amazonaws.com"

var receiptKey = regexp.MustCompile(`^receipts/[0-9a-f-]{36}_my_receipt.jpg$`)

func TestReceiptStore_Put(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		folder     string
		setupMocks func(m *storeMocks.MockStorage, r io.Reader)
		wantKind   apperr.Kind
		checkURL   func(t *testing.T, url string)
	}{
		{
			name:   "happy path",
			folder: "receipts",
			setupMocks: func(m *storeMocks.MockStorage, r io.Reader) {
				m.On("Put", ctx, mock.MatchedBy(receiptKey.MatchString), r, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
					return o.Size == 4 && o.ContentType == "image/jpeg" && o.Metadata["original-filename"] == "my receipt.jpg"
				})).Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key}
				}, nil)
			},
			checkURL: func(t *testing.T, url string) {
				key, ok := strings.CutPrefix(url, baseURL+"/")
				require.True(t, ok)
				assert.Regexp(t, receiptKey, key)
			},
		},
		{
			name:       "missing folder",
			folder:     " / ",
			setupMocks: func(m *storeMocks.MockStorage, r io.Reader) {},
			wantKind:   apperr.KindValidation,
		},
		{
			name:   "backend failure",
			folder: "receipts",
			setupMocks: func(m *storeMocks.MockStorage, r io.Reader) {
				m.On("Put", ctx, mock.Anything, r, mock.Anything).Return(storage.ObjectInfo{}, errors.New("connection refused"))
			},
			wantKind: apperr.KindStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(storeMocks.MockStorage)
			g := storage.NewReceiptStore(m, baseURL+"/", 0)
			r := strings.NewReader("jpeg")
			tt.setupMocks(m, r)

			url, err := g.Put(ctx, tt.folder, r, 4, "my receipt.jpg", "image/jpeg")

			if tt.wantKind != apperr.KindUnknown {
				assert.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				assert.Empty(t, url)
			} else {
				require.NoError(t, err)
				tt.checkURL(t, url)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestReceiptStore_KeyFromURL(t *testing.T) {
	g := storage.NewReceiptStore(new(storeMocks.MockStorage), baseURL, 0)

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "issued url", url: baseURL + "/receipts/abc_r.jpg", want: "receipts/abc_r.jpg"},
		{name: "other bucket", url: "https://other.s3.ap-south-1.amazonaws.com/receipts/abc_r.jpg", wantErr: true},
		{name: "lookalike host", url: "https://receipts-bucket.s3.ap-south-1.amazonaws.com.evil.io/receipts/a.jpg", wantErr: true},
		{name: "bare base", url: baseURL + "/", wantErr: true},
		{name: "query string", url: baseURL + "/receipts/a.jpg?x=1", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.KeyFromURL(tt.url)
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.KindInvalidReference))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReceiptStore_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("reads object", func(t *testing.T) {
		m := new(storeMocks.MockStorage)
		m.On("Get", ctx, "receipts/a.png").Return(io.NopCloser(bytes.NewReader([]byte("png-bytes"))), storage.ObjectInfo{}, nil)
		g := storage.NewReceiptStore(m, baseURL, 1024)

		b, err := g.Fetch(ctx, baseURL+"/receipts/a.png")
		assert.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), b)
		m.AssertExpectations(t)
	})

	t.Run("rejects foreign url without touching storage", func(t *testing.T) {
		m := new(storeMocks.MockStorage)
		g := storage.NewReceiptStore(m, baseURL, 1024)

		_, err := g.Fetch(ctx, "https://example.com/receipts/a.png")
		assert.True(t, apperr.Is(err, apperr.KindInvalidReference))
		m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("object too large", func(t *testing.T) {
		m := new(storeMocks.MockStorage)
		m.On("Get", ctx, "receipts/big.png").Return(io.NopCloser(strings.NewReader("0123456789")), storage.ObjectInfo{}, nil)
		g := storage.NewReceiptStore(m, baseURL, 4)

		_, err := g.Fetch(ctx, baseURL+"/receipts/big.png")
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("backend failure", func(t *testing.T) {
		m := new(storeMocks.MockStorage)
		m.On("Get", ctx, "receipts/a.png").Return(nil, storage.ObjectInfo{}, errors.New("connection reset"))
		g := storage.NewReceiptStore(m, baseURL, 0)

		_, err := g.Fetch(ctx, baseURL+"/receipts/a.png")
		assert.True(t, apperr.Is(err, apperr.KindStorage))
	})

	t.Run("missing object is an invalid reference", func(t *testing.T) {
		m := new(storeMocks.MockStorage)
		m.On("Get", ctx, "receipts/gone.png").Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound)
		g := storage.NewReceiptStore(m, baseURL, 0)

		_, err := g.Fetch(ctx, baseURL+"/receipts/gone.png")
		assert.True(t, apperr.Is(err, apperr.KindInvalidReference))
	})
}

func TestReceiptStore_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		url        string
		setupMocks func(m *storeMocks.MockStorage)
		wantKind   apperr.Kind
	}{
		{
			name: "derives folder and name",
			url:  baseURL + "/receipts/abc_r.jpg",
			setupMocks: func(m *storeMocks.MockStorage) {
				m.On("Delete", ctx, "receipts/abc_r.jpg").Return(nil)
			},
		},
		{
			name: "works for path style endpoints",
			url:  "http://localhost:9000/fuel/receipts/abc_r.jpg",
			setupMocks: func(m *storeMocks.MockStorage) {
				m.On("Delete", ctx, "receipts/abc_r.jpg").Return(nil)
			},
		},
		{
			name:       "no folder segment",
			url:        "abc_r.jpg",
			setupMocks: func(m *storeMocks.MockStorage) {},
			wantKind:   apperr.KindInvalidReference,
		},
		{
			name: "backend failure",
			url:  baseURL + "/receipts/abc_r.jpg",
			setupMocks: func(m *storeMocks.MockStorage) {
				m.On("Delete", ctx, "receipts/abc_r.jpg").Return(errors.New("denied"))
			},
			wantKind: apperr.KindStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(storeMocks.MockStorage)
			tt.setupMocks(m)
			g := storage.NewReceiptStore(m, baseURL, 0)

			err := g.Delete(ctx, tt.url)
			if tt.wantKind != apperr.KindUnknown {
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{
			name: "explicit base wins",
			cfg:  config.StorageConfig{PublicBaseURL: "https://cdn.example.com/receipts/", Bucket: "b"},
			want: "https://cdn.example.com/receipts",
		},
		{
			name: "aws virtual host",
			cfg:  config.StorageConfig{Driver: config.StorageDriverS3, Bucket: "fuel", Region: "ap-south-1"},
			want: "https://fuel.s3.ap-south-1.amazonaws.com",
		},
		{
			name: "minio path style",
			cfg:  config.StorageConfig{Driver: config.StorageDriverMinIO, Endpoint: "localhost:9000", Bucket: "fuel"},
			want: "http://localhost:9000/fuel",
		},
		{
			name: "minio with ssl",
			cfg:  config.StorageConfig{Driver: config.StorageDriverMinIO, Endpoint: "minio.internal", Bucket: "fuel", UseSSL: true},
			want: "https://minio.internal/fuel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.PublicBaseURL(tt.cfg))
		})
	}
}
