// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"reflect"
	"testing"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single line", "hello\n", []string{"hello"}},
		{"no trailing newline", "hello", []string{"hello"}},
		{"multiple lines", "a\nb\nc\n", []string{"a", "b", "c"}},
		{"interior blank preserved", "a\n\nb\n", []string{"a", "", "b"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := splitLines([]byte(test.input))
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("splitLines(%q) = %#v, want %#v", test.input, got, test.want)
			}
		})
	}
}
