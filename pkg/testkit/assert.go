// Package testkit holds shared test helpers for asserting on the JSON
// envelope the API returns.
package testkit

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fornello/pizzeria/pkg/response"
)

// DecodeEnvelope unmarshals a recorded response body into an Envelope.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env),
		"response body is not a valid envelope: %s", rec.Body.String())
	return env
}

// AssertEnvelope checks the recorded status code and the envelope's
// code/status fields in one go, returning the envelope for further
// assertions on message/data.
func AssertEnvelope(t *testing.T, rec *httptest.ResponseRecorder, wantCode int, wantStatus bool) response.Envelope {
	t.Helper()

	assert.Equal(t, wantCode, rec.Code, "HTTP status code mismatch")
	env := DecodeEnvelope(t, rec)
	assert.Equal(t, wantCode, env.Code, "envelope code mismatch")
	assert.Equal(t, wantStatus, env.Status, "envelope status mismatch")
	return env
}

// DataAs re-marshals the envelope's data field into dest, so tests can
// assert on typed payloads.
func DataAs(t *testing.T, env response.Envelope, dest interface{}) {
	t.Helper()

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}
