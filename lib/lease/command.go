// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package lease

import (
	"fmt"
	"strings"
)

// Script markers, emitted as the first line of every rendered script.
// They make captured remote sessions attributable and give fakes a
// cheap way to recognize the operation.
const (
	markerQuery         = "# colony-query"
	markerRequisition   = "# colony-requisition"
	markerFree          = "# colony-free"
	markerIdentityProbe = "# colony-identity-probe"
)

// RemoteCommand is one of the closed set of operations the lease
// protocol performs on a node. The underlying transport is a remote
// shell invocation; Script renders the operation as a POSIX shell
// script against the given path layout.
type RemoteCommand interface {
	// Script renders the remote-side script for this operation.
	Script(paths Paths) string
}

// QueryCommand reads a node's lease record under a shared advisory
// lock. It never mutates node state: readers do not block each other,
// and an absent or unreadable state file reads as Free.
type QueryCommand struct{}

// Script renders the query script. The shared lock is dropped when
// the script exits and the descriptor closes.
func (QueryCommand) Script(paths Paths) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", markerQuery)
	fmt.Fprintf(&b, "set -u\n")
	fmt.Fprintf(&b, "STATE=%s\n", shellQuote(paths.StateFile))
	fmt.Fprintf(&b, "SENTINEL=%s\n", shellQuote(paths.SentinelFile))
	fmt.Fprintf(&b, "HOLDER_IDENTITY=\n")
	fmt.Fprintf(&b, "INSTANCE_NAME=\n")
	fmt.Fprintf(&b, "if [ -e \"$STATE\" ]; then\n")
	fmt.Fprintf(&b, "  exec 9<\"$STATE\" && flock -s 9 && . \"$STATE\" 2>/dev/null\n")
	fmt.Fprintf(&b, "fi\n")
	fmt.Fprintf(&b, "BOOTSTRAP=none\n")
	fmt.Fprintf(&b, "if [ -n \"$HOLDER_IDENTITY\" ]; then\n")
	fmt.Fprintf(&b, "  if [ -e \"$SENTINEL\" ]; then BOOTSTRAP=complete; else BOOTSTRAP=partial; fi\n")
	fmt.Fprintf(&b, "fi\n")
	fmt.Fprintf(&b, "echo \"HOLDER_IDENTITY=$HOLDER_IDENTITY\"\n")
	fmt.Fprintf(&b, "echo \"INSTANCE_NAME=$INSTANCE_NAME\"\n")
	fmt.Fprintf(&b, "echo \"BOOTSTRAP=$BOOTSTRAP\"\n")
	return b.String()
}

// RequisitionCommand attempts to lease a node: take the exclusive
// lock without blocking, fail immediately if the lock or the lease is
// already held, otherwise write the record, bootstrap the node, and
// write the completion sentinel last. The record write and the lock
// release together are the commit point; the lock is released only
// when the script exits, after the write.
type RequisitionCommand struct {
	// Identity is recorded as the lease holder.
	Identity string

	// Instance is the name of the cluster run the lease is for.
	Instance string

	// AuthorizedKeys replace the node's access list during
	// bootstrap.
	AuthorizedKeys []string

	// MOTD is written to the node's message-of-day file.
	MOTD string
}

// Script renders the requisition script.
func (c RequisitionCommand) Script(paths Paths) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", markerRequisition)
	fmt.Fprintf(&b, "set -u\n")
	fmt.Fprintf(&b, "IDENTITY=%s\n", shellQuote(c.Identity))
	fmt.Fprintf(&b, "INSTANCE=%s\n", shellQuote(c.Instance))
	fmt.Fprintf(&b, "STATE=%s\n", shellQuote(paths.StateFile))
	fmt.Fprintf(&b, "SENTINEL=%s\n", shellQuote(paths.SentinelFile))
	fmt.Fprintf(&b, "AUTH=%s\n", shellQuote(paths.AuthorizedKeysFile))
	fmt.Fprintf(&b, "DEFAULT=%s\n", shellQuote(paths.DefaultKeysFile))
	fmt.Fprintf(&b, "MOTD=%s\n", shellQuote(paths.MOTDFile))
	fmt.Fprintf(&b, "SCRATCH=%s\n", shellQuote(paths.ScratchDir))
	fmt.Fprintf(&b, "mkdir -p \"$(dirname \"$STATE\")\"\n")
	fmt.Fprintf(&b, "exec 9>>\"$STATE\"\n")
	fmt.Fprintf(&b, "if ! flock -xn 9; then\n")
	fmt.Fprintf(&b, "  echo 'RESULT=contended'\n")
	fmt.Fprintf(&b, "  exit 1\n")
	fmt.Fprintf(&b, "fi\n")
	fmt.Fprintf(&b, "HOLDER_IDENTITY=\n")
	fmt.Fprintf(&b, "INSTANCE_NAME=\n")
	fmt.Fprintf(&b, ". \"$STATE\" 2>/dev/null || true\n")
	fmt.Fprintf(&b, "if [ -n \"$HOLDER_IDENTITY\" ]; then\n")
	fmt.Fprintf(&b, "  echo 'RESULT=held'\n")
	fmt.Fprintf(&b, "  echo \"HOLDER_IDENTITY=$HOLDER_IDENTITY\"\n")
	fmt.Fprintf(&b, "  echo \"INSTANCE_NAME=$INSTANCE_NAME\"\n")
	fmt.Fprintf(&b, "  exit 1\n")
	fmt.Fprintf(&b, "fi\n")
	fmt.Fprintf(&b, "printf 'HOLDER_IDENTITY=%%s\\nINSTANCE_NAME=%%s\\n' \"$IDENTITY\" \"$INSTANCE\" >\"$STATE\"\n")
	// Bootstrap. Keep a pristine copy of the access list the first
	// time a lease rewrites it, then install the caller's keys.
	fmt.Fprintf(&b, "if [ -e \"$AUTH\" ] && [ ! -e \"$DEFAULT\" ]; then cp \"$AUTH\" \"$DEFAULT\"; fi\n")
	fmt.Fprintf(&b, "printf '%%s\\n'")
	for _, key := range c.AuthorizedKeys {
		fmt.Fprintf(&b, " %s", shellQuote(key))
	}
	fmt.Fprintf(&b, " >\"$AUTH\"\n")
	fmt.Fprintf(&b, "printf '%%s\\n' %s >\"$MOTD\"\n", shellQuote(c.MOTD))
	fmt.Fprintf(&b, "mkdir -p \"$SCRATCH\"\n")
	// Sentinel last: a partial bootstrap must never look complete.
	fmt.Fprintf(&b, ": >\"$SENTINEL\"\n")
	fmt.Fprintf(&b, "echo 'RESULT=ok'\n")
	return b.String()
}

// FreeCommand releases a lease. It takes the exclusive lock (blocking:
// a free should wait out a concurrent query rather than spuriously
// fail) and verifies the recorded holder against the caller's identity
// before mutating anything. A mismatch aborts with state untouched.
type FreeCommand struct {
	// Identity is the caller's identity, compared against the
	// recorded holder.
	Identity string
}

// Script renders the free script.
func (c FreeCommand) Script(paths Paths) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", markerFree)
	fmt.Fprintf(&b, "set -u\n")
	fmt.Fprintf(&b, "IDENTITY=%s\n", shellQuote(c.Identity))
	fmt.Fprintf(&b, "STATE=%s\n", shellQuote(paths.StateFile))
	fmt.Fprintf(&b, "SENTINEL=%s\n", shellQuote(paths.SentinelFile))
	fmt.Fprintf(&b, "AUTH=%s\n", shellQuote(paths.AuthorizedKeysFile))
	fmt.Fprintf(&b, "DEFAULT=%s\n", shellQuote(paths.DefaultKeysFile))
	fmt.Fprintf(&b, "MOTD=%s\n", shellQuote(paths.MOTDFile))
	fmt.Fprintf(&b, "SCRATCH=%s\n", shellQuote(paths.ScratchDir))
	fmt.Fprintf(&b, "if [ ! -e \"$STATE\" ]; then\n")
	fmt.Fprintf(&b, "  echo 'RESULT=free'\n")
	fmt.Fprintf(&b, "  exit 1\n")
	fmt.Fprintf(&b, "fi\n")
	fmt.Fprintf(&b, "exec 9<>\"$STATE\"\n")
	fmt.Fprintf(&b, "flock 9\n")
	fmt.Fprintf(&b, "HOLDER_IDENTITY=\n")
	fmt.Fprintf(&b, "INSTANCE_NAME=\n")
	fmt.Fprintf(&b, ". \"$STATE\" 2>/dev/null || true\n")
	fmt.Fprintf(&b, "if [ -z \"$HOLDER_IDENTITY\" ]; then\n")
	fmt.Fprintf(&b, "  echo 'RESULT=free'\n")
	fmt.Fprintf(&b, "  exit 1\n")
	fmt.Fprintf(&b, "fi\n")
	fmt.Fprintf(&b, "if [ \"$HOLDER_IDENTITY\" != \"$IDENTITY\" ]; then\n")
	fmt.Fprintf(&b, "  echo 'RESULT=identity-mismatch'\n")
	fmt.Fprintf(&b, "  echo \"HOLDER_IDENTITY=$HOLDER_IDENTITY\"\n")
	fmt.Fprintf(&b, "  exit 1\n")
	fmt.Fprintf(&b, "fi\n")
	fmt.Fprintf(&b, "rm -rf \"$SCRATCH\"\n")
	fmt.Fprintf(&b, "if [ -e \"$DEFAULT\" ]; then cp \"$DEFAULT\" \"$AUTH\"; fi\n")
	fmt.Fprintf(&b, "rm -f \"$SENTINEL\" \"$MOTD\"\n")
	fmt.Fprintf(&b, "rm -f \"$STATE\"\n")
	fmt.Fprintf(&b, "echo 'RESULT=ok'\n")
	return b.String()
}

// IdentityProbeCommand reads the node's configured caller identity.
type IdentityProbeCommand struct{}

// Script renders the identity probe script.
func (IdentityProbeCommand) Script(paths Paths) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", markerIdentityProbe)
	fmt.Fprintf(&b, "printf 'IDENTITY=%%s\\n' \"$(cat %s 2>/dev/null)\"\n", shellQuote(paths.IdentityFile))
	return b.String()
}

// shellQuote wraps s in single quotes for safe embedding in a shell
// script, closing and reopening the quotes around embedded single
// quote characters.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
