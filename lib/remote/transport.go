// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import "context"

// UnreachableExitCode is the synthetic exit code reported for targets
// that could not be reached within the connection timeout. It matches
// the ssh client convention for connection-level failures.
const UnreachableExitCode = 255

// Result is the outcome of running a command on one target.
type Result struct {
	// Address is the target the command was sent to.
	Address string

	// ExitCode is the remote command's exit status, or
	// UnreachableExitCode when the target could not be reached.
	ExitCode int

	// Output holds the command's combined output split into lines,
	// in the order the remote side produced them. Empty for
	// unreachable targets.
	Output []string

	// Unreachable is true when the connection could not be
	// established. It distinguishes connectivity failure from a
	// command that ran and exited non-zero.
	Unreachable bool
}

// OK reports whether the command ran and exited zero.
func (r Result) OK() bool {
	return !r.Unreachable && r.ExitCode == 0
}

// Transport establishes a connection to one target and executes a
// command on it. Implementations must honor the context for
// connection establishment. Tests substitute a fake.
type Transport interface {
	// Exec runs command on the target and returns its exit status
	// and combined output lines. A non-nil error means the target
	// could not be reached or the session could not be established;
	// a command that ran and exited non-zero is not an error.
	Exec(ctx context.Context, address, command string) (exitCode int, output []string, err error)
}
