package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response wrapper for decoding in tests.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *EnvelopeError  `json:"error"`
}

// EnvelopeError is the error half of the wrapper. Current carries the
// server's canonical record on concurrency conflicts.
type EnvelopeError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Current json.RawMessage `json:"current"`
}

// DoJSON issues a request against the test server and decodes the
// response envelope. The clientID goes out as the X-Client-ID header so
// realtime frames attribute the change to the caller.
func (e *Env) DoJSON(method, path string, body any, clientID string) (*http.Response, Envelope) {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.BaseURL()+path, &buf)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}

	resp, err := e.Server.Client().Do(req)
	require.NoError(e.t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)

	var env Envelope
	if len(raw) > 0 {
		require.NoError(e.t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

// DecodeData unmarshals the envelope's data payload into out.
func DecodeData(t *testing.T, env Envelope, out any) {
	t.Helper()
	require.NotNil(t, env.Data, "response carried no data")
	require.NoError(t, json.Unmarshal(env.Data, out))
}
