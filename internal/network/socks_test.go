package network

import (
	"net"
	"testing"
)

func TestNewSOCKS5Dialer_CreatesDialer(t *testing.T) {
	dialer, err := NewSOCKS5Dialer("127.0.0.1", 1080)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dialer == nil {
		t.Fatal("expected non-nil dialer")
	}
}

func TestDialerFunc_EmptyHost_ReturnsNil(t *testing.T) {
	if fn := DialerFunc("", 1080); fn != nil {
		t.Fatal("expected nil function for empty host")
	}
}

func TestDialerFunc_UnreachableProxy(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	fn := DialerFunc("127.0.0.1", port)
	if fn == nil {
		t.Fatal("expected non-nil function")
	}
	if _, err := fn("tcp", "mqtt.thingspeak.com:1883"); err == nil {
		t.Fatal("expected dial error through a closed proxy port")
	}
}

func TestSOCKS5URL(t *testing.T) {
	if u := SOCKS5URL("", 1080); u != nil {
		t.Errorf("expected nil URL, got %v", u)
	}
	u := SOCKS5URL("10.0.0.1", 1080)
	if u == nil || u.String() != "socks5://10.0.0.1:1080" {
		t.Errorf("got %v", u)
	}
}
