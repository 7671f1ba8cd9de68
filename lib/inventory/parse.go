// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// fieldCount is the number of pipe-delimited fields in one inventory
// record: hostname, public address, private address, cpu cores, ram,
// primary storage type, primary storage capacity, additional storage
// types, additional storage capacities, machine class, zone.
const fieldCount = 11

// ParseError describes a malformed inventory record. A parse failure
// is fatal to the whole load: if one record is malformed the entire
// inventory is suspect.
type ParseError struct {
	// Line is the 1-based line number of the bad record.
	Line int

	// Reason describes what was wrong with the record.
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("inventory line %d: %s", e.Line, e.Reason)
}

// Parse parses pipe-delimited inventory text into the ordered node
// sequence. Blank lines and lines starting with '#' are skipped.
// Records are sorted by zone (stable, so same-zone nodes keep file
// order) and indices are assigned in post-sort order. Parsing the
// same bytes always yields an identical sequence, including index
// assignment.
func Parse(data []byte) ([]Node, error) {
	var nodes []Node

	for lineNumber, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		node, err := parseRecord(trimmed, lineNumber+1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	// Sort by zone, then assign indices. The stable sort keeps the
	// file order within a zone so index assignment is deterministic.
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Zone < nodes[j].Zone
	})
	for i := range nodes {
		nodes[i].Index = i
	}

	return nodes, nil
}

// parseRecord parses a single non-blank inventory line.
func parseRecord(line string, lineNumber int) (Node, error) {
	fields := strings.Split(line, "|")
	if len(fields) != fieldCount {
		return Node{}, &ParseError{
			Line:   lineNumber,
			Reason: fmt.Sprintf("expected %d fields, got %d", fieldCount, len(fields)),
		}
	}
	for i, field := range fields {
		fields[i] = strings.TrimSpace(field)
	}

	required := []struct {
		position int
		name     string
	}{
		{0, "hostname"},
		{1, "public address"},
		{2, "private address"},
		{10, "zone"},
	}
	for _, field := range required {
		if fields[field.position] == "" {
			return Node{}, &ParseError{
				Line:   lineNumber,
				Reason: fmt.Sprintf("missing required field %q", field.name),
			}
		}
	}

	cpuCores, err := parseNumeric(fields[3], "cpu cores", lineNumber)
	if err != nil {
		return Node{}, err
	}
	ramGB, err := parseNumeric(fields[4], "ram gb", lineNumber)
	if err != nil {
		return Node{}, err
	}
	primaryCapacity, err := parseNumeric(fields[6], "storage capacity", lineNumber)
	if err != nil {
		return Node{}, err
	}
	class, err := parseNumeric(fields[9], "machine class", lineNumber)
	if err != nil {
		return Node{}, err
	}

	additional, err := parseAdditionalStorage(fields[7], fields[8], lineNumber)
	if err != nil {
		return Node{}, err
	}

	return Node{
		Hostname:    fields[0],
		PublicAddr:  fields[1],
		PrivateAddr: fields[2],
		CPUCores:    cpuCores,
		RAMGB:       ramGB,
		PrimaryStorage: Storage{
			Type:       fields[5],
			CapacityGB: primaryCapacity,
		},
		AdditionalStorage: additional,
		Class:             MachineClass(class),
		Zone:              fields[10],
	}, nil
}

// parseAdditionalStorage zips the comma-separated type and capacity
// columns into an ordered Storage sequence. Both columns may be empty
// (no additional storage); otherwise they must have matching lengths.
func parseAdditionalStorage(types, capacities string, lineNumber int) ([]Storage, error) {
	if types == "" && capacities == "" {
		return nil, nil
	}

	typeList := strings.Split(types, ",")
	capacityList := strings.Split(capacities, ",")
	if len(typeList) != len(capacityList) {
		return nil, &ParseError{
			Line: lineNumber,
			Reason: fmt.Sprintf("additional storage mismatch: %d types, %d capacities",
				len(typeList), len(capacityList)),
		}
	}

	storage := make([]Storage, 0, len(typeList))
	for i, storageType := range typeList {
		capacity, err := parseNumeric(strings.TrimSpace(capacityList[i]),
			"additional storage capacity", lineNumber)
		if err != nil {
			return nil, err
		}
		storage = append(storage, Storage{
			Type:       strings.TrimSpace(storageType),
			CapacityGB: capacity,
		})
	}
	return storage, nil
}

// parseNumeric parses a required numeric field, turning failures into
// line-numbered ParseErrors.
func parseNumeric(value, name string, lineNumber int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ParseError{
			Line:   lineNumber,
			Reason: fmt.Sprintf("field %q is not numeric: %q", name, value),
		}
	}
	return n, nil
}
