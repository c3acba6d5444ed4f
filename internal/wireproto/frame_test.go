package wireproto

import (
	"bytes"
	"io"
	"testing"
)

type sample struct {
	Type string `json:"type"`
	N    int    `json:"n"`
}

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := sample{Type: "data", N: 42}
	if err := WriteFrame(&buf, want); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	var got sample
	if err := DecodeFrame(&buf, &got); err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil))
	if err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestReadFrameTruncatedHeader(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x01, 0x02}))
	if err != io.EOF {
		t.Errorf("err = %v, want io.EOF for a truncated header", err)
	}
}

func TestReadFrameTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, sample{Type: "x", N: 1}); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-1]

	_, err := ReadFrame(bytes.NewReader(truncated))
	if err != io.ErrUnexpectedEOF {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadFrameOversized(t *testing.T) {
	var hdr [4]byte
	hdr[0], hdr[1], hdr[2], hdr[3] = 0xff, 0xff, 0xff, 0x7f
	_, err := ReadFrame(bytes.NewReader(hdr[:]))
	if err == nil {
		t.Fatal("expected an error for an oversized frame")
	}
}

func TestMultipleFramesOnOneStream(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteFrame(&buf, sample{Type: "a", N: 1})
	_ = WriteFrame(&buf, sample{Type: "b", N: 2})

	var first, second sample
	if err := DecodeFrame(&buf, &first); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if err := DecodeFrame(&buf, &second); err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if first.Type != "a" || second.Type != "b" {
		t.Errorf("got %+v, %+v", first, second)
	}
}
