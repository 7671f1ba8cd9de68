// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for colony.
type Config struct {
	// Inventory is the path to the pipe-delimited fleet inventory file.
	Inventory string `yaml:"inventory"`

	// Profile is the path to the operator's requisition profile
	// (JSONC): identity, public keys to install, MOTD template.
	Profile string `yaml:"profile"`

	// StateDir is where colony keeps local state (the snapshot disk
	// cache and its lock file).
	StateDir string `yaml:"state_dir"`

	// SSH configures the remote transport.
	SSH SSHConfig `yaml:"ssh"`

	// Remote configures the node-resident path layout.
	Remote RemoteConfig `yaml:"remote"`

	// MaxConcurrent caps in-flight connections during a fan-out.
	// Zero selects the executor default.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// SSHConfig configures the SSH transport.
type SSHConfig struct {
	// User is the login user on fleet nodes.
	User string `yaml:"user"`

	// Port is the SSH port. Zero means 22.
	Port int `yaml:"port"`

	// KeyFile is the operator's private key path.
	KeyFile string `yaml:"key_file"`

	// ConnectTimeout bounds connection establishment per node.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// RemoteConfig configures the well-known paths on fleet nodes that
// the lease protocol operates on. All paths are interpreted on the
// remote side, relative to the node's filesystem.
type RemoteConfig struct {
	// StateFile is the node-resident lease state file. Its presence
	// with a populated holder field means the node is leased.
	StateFile string `yaml:"state_file"`

	// SentinelFile marks a completed bootstrap. It is written as the
	// final step of a requisition so a partial bootstrap is never
	// mistaken for success.
	SentinelFile string `yaml:"sentinel_file"`

	// IdentityFile holds the node's configured caller identity,
	// read by the identity probe.
	IdentityFile string `yaml:"identity_file"`

	// AuthorizedKeysFile is the access list rewritten during
	// bootstrap and restored on release.
	AuthorizedKeysFile string `yaml:"authorized_keys_file"`

	// DefaultKeysFile is the pristine access list restored when a
	// lease is freed.
	DefaultKeysFile string `yaml:"default_keys_file"`

	// MOTDFile is where the lease message-of-day is written.
	MOTDFile string `yaml:"motd_file"`

	// ScratchDir is the node-local lease scratch directory, cleared
	// when a lease is freed.
	ScratchDir string `yaml:"scratch_dir"`
}

// Default returns the default configuration. These defaults exist so
// every field has a sensible zero-value base before the config file
// is merged on top - the config file is still required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".config", "colony")

	return &Config{
		Inventory: filepath.Join(defaultRoot, "inventory"),
		Profile:   filepath.Join(defaultRoot, "profile.jsonc"),
		StateDir:  filepath.Join(homeDir, ".cache", "colony"),
		SSH: SSHConfig{
			User:           "colony",
			Port:           22,
			KeyFile:        filepath.Join(homeDir, ".ssh", "id_ed25519"),
			ConnectTimeout: 10 * time.Second,
		},
		Remote: RemoteConfig{
			StateFile:          "/home/colony/.colony/lease",
			SentinelFile:       "/home/colony/.colony/bootstrap-complete",
			IdentityFile:       "/home/colony/.colony/identity",
			AuthorizedKeysFile: "/home/colony/.ssh/authorized_keys",
			DefaultKeysFile:    "/home/colony/.ssh/authorized_keys.default",
			MOTDFile:           "/etc/motd",
			ScratchDir:         "/home/colony/scratch",
		},
	}
}

// Load loads configuration from the COLONY_CONFIG environment
// variable. There are no fallbacks: if COLONY_CONFIG is not set, this
// fails.
func Load() (*Config, error) {
	configPath := os.Getenv("COLONY_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("COLONY_CONFIG environment variable not set; " +
			"set it to the path of your colony.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The config
// file is the single source of truth; environment variables do not
// override config values. The only expansion performed is ${HOME} and
// similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// local paths. Remote paths are left untouched: they are interpreted
// on the node, not here.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Inventory = expandVars(c.Inventory, vars)
	c.Profile = expandVars(c.Profile, vars)
	c.StateDir = expandVars(c.StateDir, vars)
	c.SSH.KeyFile = expandVars(c.SSH.KeyFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Inventory == "" {
		errs = append(errs, fmt.Errorf("inventory is required"))
	}
	if c.StateDir == "" {
		errs = append(errs, fmt.Errorf("state_dir is required"))
	}
	if c.SSH.User == "" {
		errs = append(errs, fmt.Errorf("ssh.user is required"))
	}
	if c.SSH.ConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("ssh.connect_timeout must not be negative"))
	}
	if c.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("max_concurrent must not be negative"))
	}
	if c.Remote.StateFile == "" {
		errs = append(errs, fmt.Errorf("remote.state_file is required"))
	}
	if c.Remote.SentinelFile == "" {
		errs = append(errs, fmt.Errorf("remote.sentinel_file is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsureStateDir creates the local state directory if needed.
func (c *Config) EnsureStateDir() error {
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.StateDir, err)
	}
	return nil
}
