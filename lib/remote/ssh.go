// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// DefaultConnectTimeout bounds connection establishment to a target.
// Command execution itself is not bounded: once a session is running
// the operation runs to completion on the remote side.
const DefaultConnectTimeout = 10 * time.Second

// SSHTransport executes commands over SSH. Host keys are not verified:
// fleet nodes are reinstalled and reprovisioned constantly, so their
// host keys churn, and the inventory file is the trust anchor for
// addresses instead.
type SSHTransport struct {
	// User is the login user on the fleet nodes.
	User string

	// Port is the SSH port. Zero means 22.
	Port int

	// KeyFile is the path to the operator's private key.
	KeyFile string

	// ConnectTimeout bounds connection establishment. Zero means
	// DefaultConnectTimeout.
	ConnectTimeout time.Duration

	signerOnce sync.Once
	signer     ssh.Signer
	signerErr  error
}

// Exec connects to the target and runs command in a single session,
// returning the exit status and combined output lines.
func (t *SSHTransport) Exec(ctx context.Context, address, command string) (int, []string, error) {
	signer, err := t.loadSigner()
	if err != nil {
		return 0, nil, err
	}

	timeout := t.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}
	port := t.Port
	if port == 0 {
		port = 22
	}

	config := &ssh.ClientConfig{
		User:            t.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	hostPort := net.JoinHostPort(address, fmt.Sprintf("%d", port))
	dialer := net.Dialer{Timeout: timeout}
	connection, err := dialer.DialContext(ctx, "tcp", hostPort)
	if err != nil {
		return 0, nil, fmt.Errorf("dialing %s: %w", hostPort, err)
	}

	clientConnection, channels, requests, err := ssh.NewClientConn(connection, hostPort, config)
	if err != nil {
		connection.Close()
		return 0, nil, fmt.Errorf("ssh handshake with %s: %w", hostPort, err)
	}
	client := ssh.NewClient(clientConnection, channels, requests)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return 0, nil, fmt.Errorf("opening session on %s: %w", hostPort, err)
	}
	defer session.Close()

	output, err := session.CombinedOutput(command)
	exitCode := 0
	if err != nil {
		var exitErr *ssh.ExitError
		if !errors.As(err, &exitErr) {
			// Session-level failure (connection dropped mid-command).
			return 0, nil, fmt.Errorf("running command on %s: %w", hostPort, err)
		}
		exitCode = exitErr.ExitStatus()
	}

	return exitCode, splitLines(output), nil
}

// loadSigner parses the private key once and caches the signer.
func (t *SSHTransport) loadSigner() (ssh.Signer, error) {
	t.signerOnce.Do(func() {
		keyBytes, err := os.ReadFile(t.KeyFile)
		if err != nil {
			t.signerErr = fmt.Errorf("reading ssh key %s: %w", t.KeyFile, err)
			return
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			t.signerErr = fmt.Errorf("parsing ssh key %s: %w", t.KeyFile, err)
			return
		}
		t.signer = signer
	})
	return t.signer, t.signerErr
}

// splitLines splits combined output into lines, dropping the trailing
// newline so a final empty line is not reported.
func splitLines(output []byte) []string {
	text := strings.TrimSuffix(string(output), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
