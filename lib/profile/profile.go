// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// Profile is the operator's requisition profile.
type Profile struct {
	// Identity is the string leases are recorded under. It is the
	// value compared against a node's recorded holder on release.
	Identity string `json:"identity"`

	// AuthorizedKeys are the SSH public keys installed into a leased
	// node's access list during bootstrap, one per entry.
	AuthorizedKeys []string `json:"authorized_keys"`

	// MOTD is the message-of-day template written to a leased node.
	// The placeholders ${IDENTITY} and ${INSTANCE} are substituted
	// at requisition time.
	MOTD string `json:"motd"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Profile.
func Parse(data []byte) (*Profile, error) {
	stripped := jsonc.ToJSON(data)

	var p Profile
	if err := json.Unmarshal(stripped, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	return &p, nil
}

// ReadFile reads a JSONC profile file from disk, parses it, and
// validates it.
func ReadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate checks structural requirements: a non-empty identity and
// at least one key to install. The identity must be a single token;
// it is embedded in shell-sourceable assignments on the node.
func (p *Profile) Validate() error {
	if p.Identity == "" {
		return fmt.Errorf("profile identity is required")
	}
	if strings.ContainsAny(p.Identity, " \t\n'\"") {
		return fmt.Errorf("profile identity %q must not contain whitespace or quotes", p.Identity)
	}
	if len(p.AuthorizedKeys) == 0 {
		return fmt.Errorf("profile must list at least one authorized key")
	}
	for i, key := range p.AuthorizedKeys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("authorized key %d is blank", i)
		}
		if strings.Contains(key, "\n") {
			return fmt.Errorf("authorized key %d spans multiple lines", i)
		}
	}
	return nil
}

// ExpandMOTD substitutes the lease placeholders in the MOTD template.
func (p *Profile) ExpandMOTD(instance string) string {
	motd := strings.ReplaceAll(p.MOTD, "${IDENTITY}", p.Identity)
	return strings.ReplaceAll(motd, "${INSTANCE}", instance)
}
