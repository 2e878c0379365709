package client

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// checkProxyTimeout is the timeout for checking if the SOCKS5 proxy is
// available. We use a short timeout here because this is just a
// connectivity check, not an actual request through the proxy.
const checkProxyTimeout = 2 * time.Second

// SOCKS5 protocol constants
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
	socks5CmdConnect   = 0x01
	socks5AddrDomain   = 0x03

	// socks5TestHost is a synthetic address used for SOCKS5 verification.
	// The .invalid TLD guarantees it never resolves - we only need to
	// verify the proxy responds to SOCKS5 CONNECT requests, not that the
	// connection succeeds.
	socks5TestHost = "proxy-check.invalid"
)

// CheckProxy verifies that the configured SOCKS5 proxy is running and
// accessible. It returns ProxyStatusOK immediately when no proxy is
// configured.
//
// The check works by performing a SOCKS5 protocol handshake to verify:
//  1. The proxy speaks SOCKS5 protocol
//  2. The proxy accepts connections without authentication
//  3. The proxy processes CONNECT requests
//
// This is more robust than checking response strings: an unrelated
// service on the port cannot easily mimic proper SOCKS5 behavior.
func (c *Client) CheckProxy(ctx context.Context) ProxyStatus {
	if c.proxyAddress == "" {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Step 1: version negotiation. Client sends version + method count +
	// methods; we offer no-authentication only.
	_, err = conn.Write([]byte{socks5Version, 0x01, socks5AuthNone})
	if err != nil {
		return ProxyStatusCannotConnect
	}

	// Server responds: version (1 byte) + selected auth method (1 byte)
	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		// Anything else means it didn't speak SOCKS5 properly
		return ProxyStatusWrongType
	}

	if authResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	authMethod := authResp[1]
	if authMethod == socks5AuthNoAccept || authMethod != socks5AuthNone {
		// Server requires authentication or selected an unknown method
		return ProxyStatusWrongType
	}

	// Step 2: verify the proxy processes CONNECT requests. The proxy
	// should respond even with failure for the unresolvable test host;
	// this verifies it's actually proxying, not just accepting
	// handshakes.
	testPort := uint16(80)
	connectReq := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrDomain,
		byte(len(socks5TestHost)),
	}
	connectReq = append(connectReq, []byte(socks5TestHost)...)
	connectReq = append(connectReq, byte(testPort>>8), byte(testPort&0xFF))

	_, err = conn.Write(connectReq)
	if err != nil {
		return ProxyStatusCannotConnect
	}

	// Read response header: version + reply + reserved + addr type.
	// The actual connection may fail - we only need the proxy to answer.
	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	// Any reply code (success or failure) means the proxy processed the
	// SOCKS5 request.
	return ProxyStatusOK
}
