// Package network provides proxy dialing and interface address helpers.
package network

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"golang.org/x/net/proxy"
)

// NewSOCKS5Dialer creates a SOCKS5 proxy dialer.
func NewSOCKS5Dialer(host string, port int) (proxy.Dialer, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", addr, err)
	}
	return dialer, nil
}

// DialerFunc returns a dial function that goes through the SOCKS5 proxy at
// host:port, or nil when host is empty.
func DialerFunc(host string, port int) func(network, addr string) (net.Conn, error) {
	if host == "" {
		return nil
	}
	return func(network, addr string) (net.Conn, error) {
		dialer, err := NewSOCKS5Dialer(host, port)
		if err != nil {
			return nil, err
		}
		return dialer.Dial(network, addr)
	}
}

// SOCKS5URL returns the proxy URL for HTTP-upgrade clients, or nil when
// host is empty.
func SOCKS5URL(host string, port int) *url.URL {
	if host == "" {
		return nil
	}
	return &url.URL{Scheme: "socks5", Host: net.JoinHostPort(host, strconv.Itoa(port))}
}
