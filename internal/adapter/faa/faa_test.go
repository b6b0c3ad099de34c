package faa

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

const (
	testUserAgent     = "obstacle-etl-test"
	headerUserAgent   = "User-Agent"
	headerContentType = "Content-Type"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient() *Client {
	return NewClient(5*time.Second, testUserAgent, testLogger())
}

// buildZip creates an in-memory archive from name -> raw bytes.
func buildZip(t *testing.T, members map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
