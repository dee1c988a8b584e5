package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// Embed handshake errors
var (
	ErrInvalidSignature = errors.New("embed signature mismatch")
	ErrMalformedContext = errors.New("malformed embed context")
)

// EmbedContext is the payload FUB places in the iframe query string.
// Only the fields the assistant needs are decoded.
type EmbedContext struct {
	Account struct {
		ID string `json:"id"`
	} `json:"account"`
	Person struct {
		ID string `json:"id"`
	} `json:"person"`
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// EmbedVerifier validates the signed context handed to the embedded widget
type EmbedVerifier struct {
	secret []byte
}

// NewEmbedVerifier creates a verifier for the shared embed secret
func NewEmbedVerifier(secret string) *EmbedVerifier {
	return &EmbedVerifier{secret: []byte(secret)}
}

// Verify checks the hex HMAC-SHA256 signature over the raw base64 context.
// The signature covers the encoded string exactly as received, before any
// base64 decoding.
func (v *EmbedVerifier) Verify(contextB64, signature string) error {
	if contextB64 == "" || signature == "" {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(contextB64))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrInvalidSignature
	}
	return nil
}

// Decode parses the base64 context payload. FUB strips base64 padding from
// the query parameter, so it is restored before decoding.
func (v *EmbedVerifier) Decode(contextB64 string) (*EmbedContext, error) {
	padded := contextB64
	if m := len(padded) % 4; m != 0 {
		padded += strings.Repeat("=", 4-m)
	}

	raw, err := base64.StdEncoding.DecodeString(padded)
	if err != nil {
		// Some embeds use the URL-safe alphabet
		raw, err = base64.URLEncoding.DecodeString(padded)
		if err != nil {
			return nil, ErrMalformedContext
		}
	}

	var ec EmbedContext
	if err := json.Unmarshal(raw, &ec); err != nil {
		return nil, ErrMalformedContext
	}
	if ec.Account.ID == "" {
		return nil, ErrMalformedContext
	}
	return &ec, nil
}

// VerifyAndDecode verifies the signature then decodes the context
func (v *EmbedVerifier) VerifyAndDecode(contextB64, signature string) (*EmbedContext, error) {
	if err := v.Verify(contextB64, signature); err != nil {
		return nil, err
	}
	return v.Decode(contextB64)
}

// Sign computes the hex signature for a context payload. Used by tests and
// local tooling to produce valid embed links.
func (v *EmbedVerifier) Sign(contextB64 string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(contextB64))
	return hex.EncodeToString(mac.Sum(nil))
}
