package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/dom/account-service/internal/testutil"
	"github.com/stretchr/testify/require"
)

// doJSON sends body as JSON, authenticating with token when set
func doJSON(t *testing.T, method, url string, body interface{}, token string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	// The client jar drops Secure cookies over plain http
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// doMultipart sends a multipart form, authenticating with token when set
func doMultipart(t *testing.T, method, url string, fields, files map[string]string, token string) *http.Response {
	t.Helper()

	body, contentType := testutil.NewMultipartBody(t, fields, files)
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func registerFields(username, email string) map[string]string {
	return map[string]string{
		"username": username,
		"fullname": "Test User",
		"email":    email,
		"password": "password123",
	}
}

func requireUploadDirEmpty(t *testing.T, ts *testutil.TestServer) {
	t.Helper()

	entries, err := os.ReadDir(ts.Config.UploadDir)
	require.NoError(t, err)
	require.Empty(t, entries, "staged uploads left on disk")
}
