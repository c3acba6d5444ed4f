// Package wireproto implements the length-prefixed JSON framing used on
// both hops of the native host: extension<->bridge over stdio, and
// bridge<->daemon over loopback TCP. Both directions of both hops share
// the same wire shape: a 4-byte little-endian length prefix followed by
// that many bytes of UTF-8 JSON.
package wireproto

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame to guard against a corrupt or
// malicious length prefix causing an unbounded allocation.
const MaxFrameSize = 16 * 1024 * 1024

// WriteFrame writes v as one length-prefixed JSON frame to w.
func WriteFrame(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wireproto: marshal frame: %w", err)
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wireproto: write frame header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("wireproto: write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r and returns its raw
// JSON body. It returns io.EOF (unwrapped) when r is exhausted exactly
// at a frame boundary, matching the "EOF on stdin is the terminal event"
// behavior callers rely on.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("wireproto: frame of %d bytes exceeds max %d", n, MaxFrameSize)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}

// DecodeFrame reads one frame from r and unmarshals it into v.
func DecodeFrame(r io.Reader, v interface{}) error {
	body, err := ReadFrame(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}
