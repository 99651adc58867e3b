package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestFormatHttpMessageTruncatesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-B", "2")
		w.Header().Set("X-A", "1")
		w.Write([]byte(strings.Repeat("a", maxDumpedBody+10)))
	}))
	defer server.Close()

	res, err := resty.New().R().Get(server.URL + "/TextMapCHS.json")
	require.NoError(t, err)

	message := FormatHttpMessage(res)
	require.Contains(t, message, "GET "+server.URL+"/TextMapCHS.json")
	require.Contains(t, message, "X-A: 1\nX-B: 2")
	require.True(t, strings.HasSuffix(message, "<TRUNCATED>"))
	require.Less(t, len(message), maxDumpedBody+1024)
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "resty")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("1", "exchange")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	contents, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Equal(t, "exchange", string(contents))
}
