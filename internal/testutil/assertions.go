package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the shape shared by success and error bodies
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// DecodeEnvelope checks for a success envelope and decodes its data into v
func DecodeEnvelope(t *testing.T, resp *http.Response, v interface{}) *Envelope {
	t.Helper()

	var env Envelope
	AssertJSONResponse(t, resp, &env)
	require.True(t, env.Success, "expected success envelope, got %q", env.Message)
	assert.Equal(t, resp.StatusCode, env.StatusCode)

	if v != nil {
		require.NoError(t, json.Unmarshal(env.Data, v), "failed to unmarshal data: %s", string(env.Data))
	}
	return &env
}

// AssertErrorResponse verifies the error envelope carries the expected status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) *Envelope {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var env Envelope
	AssertJSONResponse(t, resp, &env)
	assert.False(t, env.Success)
	assert.Equal(t, expectedStatus, env.StatusCode)
	assert.True(t, len(env.Data) == 0 || string(env.Data) == "null", "error data must be null")
	assert.Equal(t, expectedMessage, env.Message, "error message mismatch")
	return &env
}

// FindCookie returns the named cookie set by resp, or nil
func FindCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AssertSessionCookie verifies a session cookie carries the required attributes
func AssertSessionCookie(t *testing.T, resp *http.Response, name string, cleared bool) *http.Cookie {
	t.Helper()

	c := FindCookie(resp, name)
	require.NotNil(t, c, "cookie %s not set", name)
	assert.True(t, c.HttpOnly, "cookie %s must be HttpOnly", name)
	assert.True(t, c.Secure, "cookie %s must be Secure", name)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	if cleared {
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	} else {
		assert.NotEmpty(t, c.Value)
		assert.Greater(t, c.MaxAge, 0)
	}
	return c
}
