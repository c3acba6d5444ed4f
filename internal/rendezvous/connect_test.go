package rendezvous

import (
	"net"
	"strconv"
	"testing"

	"github.com/run-in-terminal/rit-host/internal/auth"
)

func TestTryConnectSucceedsAgainstHandshakingServer(t *testing.T) {
	key, err := auth.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = auth.ServerHandshake(conn, key[:])
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	c := &Coordinates{Name: "t", Host: host, Port: port, AuthKeyB64: EncodeAuthKey(key[:])}
	conn, err := TryConnect(c)
	if err != nil {
		t.Fatalf("TryConnect failed: %v", err)
	}
	defer conn.Close()
}

func TestTryConnectFailsWithWrongAuthKey(t *testing.T) {
	serverKey, _ := auth.GenerateKey()
	wrongKey, _ := auth.GenerateKey()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = auth.ServerHandshake(conn, serverKey[:])
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	c := &Coordinates{Name: "t", Host: host, Port: port, AuthKeyB64: EncodeAuthKey(wrongKey[:])}
	if _, err := TryConnect(c); err == nil {
		t.Error("TryConnect should fail when the authkey doesn't match the server's")
	}
}

func TestTryConnectFailsAgainstNothingListening(t *testing.T) {
	c := &Coordinates{Name: "t", Host: "127.0.0.1", Port: 1, AuthKeyB64: EncodeAuthKey([]byte("x"))}
	if _, err := TryConnect(c); err == nil {
		t.Error("TryConnect should fail when nothing is listening")
	}
}
