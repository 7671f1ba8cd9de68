// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleProfile = `{
  // Identity recorded as the lease holder.
  "identity": "alice",
  "authorized_keys": [
    "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAITESTKEY alice@laptop",
  ],
  "motd": "Leased to ${IDENTITY} for ${INSTANCE}.",
}`

func TestParseJSONC(t *testing.T) {
	p, err := Parse([]byte(sampleProfile))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Identity != "alice" {
		t.Errorf("identity: got %q", p.Identity)
	}
	if len(p.AuthorizedKeys) != 1 {
		t.Errorf("got %d keys, want 1", len(p.AuthorizedKeys))
	}
}

func TestReadFileValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.jsonc")
	if err := os.WriteFile(path, []byte(sampleProfile), 0o644); err != nil {
		t.Fatalf("writing profile: %v", err)
	}

	if _, err := ReadFile(path); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
}

func TestValidateRejectsBadProfiles(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
	}{
		{"empty identity", Profile{AuthorizedKeys: []string{"ssh-ed25519 KEY"}}},
		{"identity with space", Profile{Identity: "alice smith", AuthorizedKeys: []string{"ssh-ed25519 KEY"}}},
		{"identity with quote", Profile{Identity: "al'ice", AuthorizedKeys: []string{"ssh-ed25519 KEY"}}},
		{"no keys", Profile{Identity: "alice"}},
		{"blank key", Profile{Identity: "alice", AuthorizedKeys: []string{"  "}}},
		{"multiline key", Profile{Identity: "alice", AuthorizedKeys: []string{"ssh-ed25519\nKEY"}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.profile.Validate(); err == nil {
				t.Errorf("Validate accepted %+v", test.profile)
			}
		})
	}
}

func TestExpandMOTD(t *testing.T) {
	p := Profile{
		Identity: "alice",
		MOTD:     "Leased to ${IDENTITY} for ${INSTANCE}.",
	}
	motd := p.ExpandMOTD("testnet-1")
	if !strings.Contains(motd, "alice") || !strings.Contains(motd, "testnet-1") {
		t.Errorf("ExpandMOTD: got %q", motd)
	}
}
