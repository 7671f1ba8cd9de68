// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseSingleRecord(t *testing.T) {
	nodes, err := Parse([]byte("node1|1.2.3.4|10.0.0.1|8|32|ssd|500|hdd|1000|1|us-east\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}

	want := Node{
		Index:             0,
		Hostname:          "node1",
		PublicAddr:        "1.2.3.4",
		PrivateAddr:       "10.0.0.1",
		CPUCores:          8,
		RAMGB:             32,
		PrimaryStorage:    Storage{Type: "ssd", CapacityGB: 500},
		AdditionalStorage: []Storage{{Type: "hdd", CapacityGB: 1000}},
		Class:             1,
		Zone:              "us-east",
	}
	if !reflect.DeepEqual(nodes[0], want) {
		t.Errorf("parsed node mismatch:\n got  %+v\n want %+v", nodes[0], want)
	}
}

func TestParseSortsByZoneAndAssignsIndices(t *testing.T) {
	inventory := "" +
		"west1|5.0.0.1|10.0.0.1|8|32|ssd|500|||0|us-west\n" +
		"east1|5.0.0.2|10.0.0.2|8|32|ssd|500|||0|us-east\n" +
		"west2|5.0.0.3|10.0.0.3|8|32|ssd|500|||0|us-west\n"

	nodes, err := Parse([]byte(inventory))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantOrder := []string{"east1", "west1", "west2"}
	for i, hostname := range wantOrder {
		if nodes[i].Hostname != hostname {
			t.Errorf("position %d: got %q, want %q", i, nodes[i].Hostname, hostname)
		}
		if nodes[i].Index != i {
			t.Errorf("node %q: got index %d, want %d", nodes[i].Hostname, nodes[i].Index, i)
		}
	}
}

func TestParseDeterministic(t *testing.T) {
	inventory := []byte("" +
		"b1|5.0.0.1|10.0.0.1|8|32|ssd|500|||0|zone-b\n" +
		"a1|5.0.0.2|10.0.0.2|16|64|nvme|1000|hdd,hdd|2000,2000|2|zone-a\n" +
		"b2|5.0.0.3|10.0.0.3|8|32|ssd|500|||1|zone-b\n")

	first, err := Parse(inventory)
	if err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	second, err := Parse(inventory)
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated parse differs:\n first  %+v\n second %+v", first, second)
	}
}

func TestParseSkipsBlanksAndComments(t *testing.T) {
	inventory := []byte("\n# fleet inventory\n\nnode1|1.2.3.4|10.0.0.1|8|32|ssd|500|||0|us-east\n\n")
	nodes, err := Parse(inventory)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nodes) != 1 {
		t.Errorf("got %d nodes, want 1", len(nodes))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "node1|1.2.3.4|10.0.0.1|8|32|ssd|500|1|us-east"},
		{"missing hostname", "|1.2.3.4|10.0.0.1|8|32|ssd|500|||0|us-east"},
		{"missing zone", "node1|1.2.3.4|10.0.0.1|8|32|ssd|500|||0|"},
		{"non-numeric cores", "node1|1.2.3.4|10.0.0.1|eight|32|ssd|500|||0|us-east"},
		{"non-numeric class", "node1|1.2.3.4|10.0.0.1|8|32|ssd|500|||gpu|us-east"},
		{"storage column mismatch", "node1|1.2.3.4|10.0.0.1|8|32|ssd|500|hdd,hdd|1000|0|us-east"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.line + "\n"))
			if err == nil {
				t.Fatalf("Parse accepted malformed record %q", test.line)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("got %T, want *ParseError", err)
			}
			if parseErr.Line != 1 {
				t.Errorf("got line %d, want 1", parseErr.Line)
			}
		})
	}
}

func TestParseErrorReportsLineNumber(t *testing.T) {
	inventory := []byte("" +
		"node1|1.2.3.4|10.0.0.1|8|32|ssd|500|||0|us-east\n" +
		"# comment\n" +
		"node2|1.2.3.5|10.0.0.2|bad|32|ssd|500|||0|us-east\n")

	_, err := Parse(inventory)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %T (%v), want *ParseError", err, err)
	}
	if parseErr.Line != 3 {
		t.Errorf("got line %d, want 3", parseErr.Line)
	}
}
