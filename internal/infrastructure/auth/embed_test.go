package auth

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const embedTestSecret = "embed-shared-secret"

func encodeContext(t *testing.T, payload string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestEmbedVerifier_VerifyAndDecode(t *testing.T) {
	v := NewEmbedVerifier(embedTestSecret)

	contextB64 := encodeContext(t, `{"account":{"id":"acc-9"},"person":{"id":"123"},"user":{"id":"u1","name":"Jamie","email":"jamie@example.com"}}`)
	sig := v.Sign(contextB64)

	ec, err := v.VerifyAndDecode(contextB64, sig)
	require.NoError(t, err)

	assert.Equal(t, "acc-9", ec.Account.ID)
	assert.Equal(t, "123", ec.Person.ID)
	assert.Equal(t, "Jamie", ec.User.Name)
}

func TestEmbedVerifier_RejectsBadSignature(t *testing.T) {
	v := NewEmbedVerifier(embedTestSecret)

	contextB64 := encodeContext(t, `{"account":{"id":"acc-9"}}`)

	tests := []struct {
		name string
		sig  string
	}{
		{name: "empty", sig: ""},
		{name: "wrong value", sig: strings.Repeat("ab", 32)},
		{name: "signed with other secret", sig: NewEmbedVerifier("other").Sign(contextB64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyAndDecode(contextB64, tt.sig)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestEmbedVerifier_DecodeRestoresPadding(t *testing.T) {
	v := NewEmbedVerifier(embedTestSecret)

	// FUB strips trailing = from the query parameter
	contextB64 := strings.TrimRight(encodeContext(t, `{"account":{"id":"acc-9"},"person":{"id":"77"}}`), "=")
	sig := v.Sign(contextB64)

	ec, err := v.VerifyAndDecode(contextB64, sig)
	require.NoError(t, err)
	assert.Equal(t, "77", ec.Person.ID)
}

func TestEmbedVerifier_MalformedContext(t *testing.T) {
	v := NewEmbedVerifier(embedTestSecret)

	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: encodeContext(t, "plain text")},
		{name: "missing account", payload: encodeContext(t, `{"person":{"id":"1"}}`)},
		{name: "not base64", payload: "%%%%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := v.Sign(tt.payload)
			_, err := v.VerifyAndDecode(tt.payload, sig)
			assert.ErrorIs(t, err, ErrMalformedContext)
		})
	}
}
