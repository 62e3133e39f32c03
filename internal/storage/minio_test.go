package storage

import (
	"errors"
	"net/url"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlasdocs/internal/config"
)

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		msg  string
	}{
		{"missing endpoint", config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}, "endpoint"},
		{"missing credentials", config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}, "credentials"},
		{"missing bucket", config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(tt.cfg)
			assert.Nil(t, s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestPublicBase(t *testing.T) {
	endpoint, err := url.Parse("http://localhost:9000")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/docs",
		publicBase(config.MinIOConfig{Bucket: "docs"}, endpoint))
	assert.Equal(t, "https://cdn.example.com/files",
		publicBase(config.MinIOConfig{Bucket: "docs", PublicURL: "https://cdn.example.com/files/"}, endpoint))
}

func TestPublicURL(t *testing.T) {
	m := &minioStorage{publicBase: "https://cdn.example.com/docs"}

	assert.Equal(t, "https://cdn.example.com/docs/1760000000000-policy_a.pdf", m.PublicURL("1760000000000-policy_a.pdf"))
	assert.Equal(t, "https://cdn.example.com/docs/1-r%C3%A9sum%C3%A9.pdf", m.PublicURL("1-résumé.pdf"))
}

func TestIsNoSuchKey(t *testing.T) {
	assert.True(t, isNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.False(t, isNoSuchKey(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, isNoSuchKey(errors.New("dial tcp: connection refused")))
}
