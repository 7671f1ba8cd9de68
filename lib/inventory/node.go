// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package inventory

// MachineClass is a coarse capability descriptor for a node, currently
// a single integer accelerator count. It is deliberately
// one-dimensional: callers must only rely on the monotonic comparison
// exposed by Satisfies, so the descriptor can grow richer later
// without breaking them.
type MachineClass int

// Satisfies reports whether a node offering this class can host a
// workload requesting the given class. The relation is numeric
// ordering: an offered class satisfies every requested class less
// than or equal to it.
func (c MachineClass) Satisfies(requested MachineClass) bool {
	return c >= requested
}

// Storage describes one storage device attached to a node.
type Storage struct {
	// Type is the device type (e.g., "ssd", "hdd", "nvme").
	Type string `json:"type"`

	// CapacityGB is the device capacity in gigabytes.
	CapacityGB int `json:"capacity_gb"`
}

// Node is one immutable inventory entry. Nodes are created once at
// Catalog load and never mutated; share them freely by value or
// pointer.
type Node struct {
	// Index is the node's stable position in the loaded inventory,
	// assigned after the zone sort. It identifies the node for the
	// lifetime of the process.
	Index int `json:"index"`

	// Hostname is the node's configured host name.
	Hostname string `json:"hostname"`

	// PublicAddr is the address operators connect to.
	PublicAddr string `json:"public_address"`

	// PrivateAddr is the address nodes use among themselves.
	PrivateAddr string `json:"private_address"`

	// CPUCores is the number of physical CPU cores.
	CPUCores int `json:"cpu_cores"`

	// RAMGB is the installed memory in gigabytes.
	RAMGB int `json:"ram_gb"`

	// PrimaryStorage is the boot/system storage device.
	PrimaryStorage Storage `json:"primary_storage"`

	// AdditionalStorage lists extra devices in inventory order.
	AdditionalStorage []Storage `json:"additional_storage,omitempty"`

	// Class is the node's capability descriptor.
	Class MachineClass `json:"machine_class"`

	// Zone is the node's location/grouping tag.
	Zone string `json:"zone"`
}
