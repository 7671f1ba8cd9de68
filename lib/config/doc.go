// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for colony.
//
// Configuration is loaded from a single YAML file specified by:
//   - COLONY_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
// The only expansion performed is ${HOME}-style path variables for
// portability.
package config
