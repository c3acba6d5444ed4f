// Package auth implements the authenticated handshake a bridge performs
// against a session daemon's loopback listener, keyed on the 32-byte
// authkey published in the session's coordinates file.
//
// This is the loopback-appropriate descendant of the teacher's
// internal/crypto package: that package derives a stream-encryption key
// from a user-chosen password with Argon2id/PBKDF2 for a P2P session. Here
// the shared secret is already a daemon-generated random value and the
// job is authenticating a connection rather than encrypting one, so HKDF
// replaces the password KDFs and the derived key feeds an HMAC
// challenge-response instead of a cipher.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
)

// KeyLen is the length of the shared authkey published by a session
// daemon, per spec.md's SessionCoordinates.authkey.
const KeyLen = 32

// NonceLen is the length of the server-issued handshake challenge.
const NonceLen = 16

// HandshakeTimeout bounds how long the server waits for a client's
// response to the challenge before closing the connection.
const HandshakeTimeout = 2 * time.Second

// GenerateKey returns a new random 32-byte authkey.
func GenerateKey() ([KeyLen]byte, error) {
	var key [KeyLen]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return key, fmt.Errorf("auth: generate key: %w", err)
	}
	return key, nil
}

// deriveMACKey derives a per-handshake key from the shared authkey and a
// nonce using HKDF-SHA256, so the same authkey never signs two different
// nonces with the same raw key material.
func deriveMACKey(authkey []byte, nonce []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, authkey, nonce, []byte("rit-handshake"))
	derived := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, derived); err != nil {
		return nil, fmt.Errorf("auth: derive handshake key: %w", err)
	}
	return derived, nil
}

// Response computes the HMAC-SHA256 response a client must return for a
// given nonce and authkey.
func Response(authkey []byte, nonce []byte) ([]byte, error) {
	macKey, err := deriveMACKey(authkey, nonce)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, macKey)
	mac.Write(nonce)
	return mac.Sum(nil), nil
}

// Verify reports whether response is the correct HMAC response to nonce
// under authkey, using a constant-time comparison.
func Verify(authkey []byte, nonce []byte, response []byte) bool {
	want, err := Response(authkey, nonce)
	if err != nil {
		return false
	}
	return hmac.Equal(want, response)
}

// NewNonce returns a fresh random handshake challenge.
func NewNonce() ([NonceLen]byte, error) {
	var nonce [NonceLen]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nonce, fmt.Errorf("auth: generate nonce: %w", err)
	}
	return nonce, nil
}
