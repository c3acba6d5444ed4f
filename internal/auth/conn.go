package auth

import (
	"fmt"
	"io"
	"net"
	"time"
)

// ServerHandshake runs the server side of the authenticated handshake
// over conn: it issues a random nonce and verifies the peer's HMAC
// response within HandshakeTimeout. On any failure it returns a non-nil
// error; the caller must close the connection without registering it.
func ServerHandshake(conn net.Conn, authkey []byte) error {
	nonce, err := NewNonce()
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(HandshakeTimeout)); err != nil {
		return err
	}
	if _, err := conn.Write(nonce[:]); err != nil {
		return fmt.Errorf("auth: write nonce: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(HandshakeTimeout)); err != nil {
		return err
	}
	response := make([]byte, 32)
	if _, err := io.ReadFull(conn, response); err != nil {
		return fmt.Errorf("auth: read response: %w", err)
	}
	if !Verify(authkey, nonce[:], response) {
		return fmt.Errorf("auth: handshake response mismatch")
	}

	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})
	return nil
}

// ClientHandshake runs the client side of the authenticated handshake:
// it reads the server's nonce and answers with the HMAC response.
func ClientHandshake(conn net.Conn, authkey []byte) error {
	if err := conn.SetDeadline(time.Now().Add(HandshakeTimeout)); err != nil {
		return err
	}
	nonce := make([]byte, NonceLen)
	if _, err := io.ReadFull(conn, nonce); err != nil {
		return fmt.Errorf("auth: read nonce: %w", err)
	}
	response, err := Response(authkey, nonce)
	if err != nil {
		return err
	}
	if _, err := conn.Write(response); err != nil {
		return fmt.Errorf("auth: write response: %w", err)
	}
	return conn.SetDeadline(time.Time{})
}
