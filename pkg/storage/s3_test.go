package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportKey(t *testing.T) {
	created := time.Date(2025, 12, 2, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "exports/2025-12-02/abc.json", ExportKey("abc", created))
}

func TestPresignExpire(t *testing.T) {
	assert.Equal(t, 15*time.Minute, PresignExpire(0))
	assert.Equal(t, 5*time.Minute, PresignExpire(5))
}

func TestExportDownloadURLSignsLocally(t *testing.T) {
	s, err := NewS3(context.Background(), S3Config{
		Region:               "eu-north-1",
		AccessKeyID:          "AKIDEXAMPLE",
		SecretAccessKey:      "secret",
		ExportsBucket:        "agenda-exports",
		PresignExpireMinutes: 10,
	}, nil)
	require.NoError(t, err)

	url, expires, err := s.ExportDownloadURL(context.Background(), "exports/2025-12-02/abc.json")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, expires)
	assert.True(t, strings.Contains(url, "agenda-exports"))
	assert.True(t, strings.Contains(url, "X-Amz-Signature="))
}
