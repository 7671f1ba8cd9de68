// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package lease

import "github.com/colonyops/colony/lib/config"

// Paths is the node-resident path layout the lease protocol operates
// on. Every path is interpreted on the remote node's filesystem.
type Paths struct {
	// StateFile holds the lease record as shell-sourceable
	// assignments (HOLDER_IDENTITY=, INSTANCE_NAME=). It doubles as
	// the flock target.
	StateFile string

	// SentinelFile marks a completed bootstrap. Written as the final
	// requisition step, removed on free.
	SentinelFile string

	// IdentityFile holds the node's configured caller identity.
	IdentityFile string

	// AuthorizedKeysFile is the access list rewritten during
	// bootstrap.
	AuthorizedKeysFile string

	// DefaultKeysFile is the pristine access list restored on free.
	DefaultKeysFile string

	// MOTDFile is where the lease message-of-day is written.
	MOTDFile string

	// ScratchDir is lease-scratch space cleared on free.
	ScratchDir string
}

// PathsFromConfig maps the remote section of the colony config onto
// the protocol path layout.
func PathsFromConfig(remote config.RemoteConfig) Paths {
	return Paths{
		StateFile:          remote.StateFile,
		SentinelFile:       remote.SentinelFile,
		IdentityFile:       remote.IdentityFile,
		AuthorizedKeysFile: remote.AuthorizedKeysFile,
		DefaultKeysFile:    remote.DefaultKeysFile,
		MOTDFile:           remote.MOTDFile,
		ScratchDir:         remote.ScratchDir,
	}
}
