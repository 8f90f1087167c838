package services

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"
)

const (
	connectionTimeout = 10 * time.Second
)

// ConnectionTestResult represents the result of a connection test
type ConnectionTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// buildAddress builds a host:port address string
func buildAddress(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// testIMAPConnectionInternal probes an IMAP server with a raw LOGIN round
// trip. Cheaper than a full client session for a yes/no answer.
func testIMAPConnectionInternal(addr, username, password string, useSSL bool) ConnectionTestResult {
	var conn net.Conn
	var err error

	dialer := &net.Dialer{
		Timeout: connectionTimeout,
	}

	if useSSL {
		tlsConfig := &tls.Config{
			InsecureSkipVerify: false,
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}

	if err != nil {
		return ConnectionTestResult{
			Success: false,
			Message: fmt.Sprintf("Failed to connect to IMAP server: %v", err),
		}
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(connectionTimeout))

	// Read server greeting
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return ConnectionTestResult{
			Success: false,
			Message: fmt.Sprintf("Failed to read IMAP greeting: %v", err),
		}
	}

	greeting := string(buf[:n])
	if !strings.HasPrefix(greeting, "* OK") {
		return ConnectionTestResult{
			Success: false,
			Message: "Invalid IMAP server response",
		}
	}

	loginCmd := fmt.Sprintf("A001 LOGIN %s %s\r\n", username, password)
	if _, err = conn.Write([]byte(loginCmd)); err != nil {
		return ConnectionTestResult{
			Success: false,
			Message: fmt.Sprintf("Failed to send login command: %v", err),
		}
	}

	conn.SetReadDeadline(time.Now().Add(connectionTimeout))
	n, err = conn.Read(buf)
	if err != nil {
		return ConnectionTestResult{
			Success: false,
			Message: fmt.Sprintf("Failed to read login response: %v", err),
		}
	}

	response := string(buf[:n])
	if strings.HasPrefix(response, "A001 OK") {
		conn.Write([]byte("A002 LOGOUT\r\n"))
		return ConnectionTestResult{
			Success: true,
			Message: "IMAP connection and authentication successful",
		}
	}

	return ConnectionTestResult{
		Success: false,
		Message: "IMAP authentication failed: " + response,
	}
}
