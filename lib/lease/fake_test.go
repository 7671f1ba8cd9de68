// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package lease

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/colonyops/colony/lib/remote"
)

// fakeNode is the in-memory state one fake fleet node keeps: the
// lease record, the bootstrap artifacts, and a wedged flag that
// simulates the exclusive flock being held by a concurrent operation.
type fakeNode struct {
	holder   string
	instance string
	sentinel bool
	authKeys []string
	motd     string
	scratch  bool
	identity string
	wedged   bool
}

// fakeFleet implements remote.Transport by interpreting the rendered
// protocol scripts against in-memory node state. Each Exec holds the
// fleet mutex for the whole operation, which models the per-node
// exclusivity the real flock provides.
type fakeFleet struct {
	mu    sync.Mutex
	nodes map[string]*fakeNode
	down  map[string]bool
}

func newFakeFleet() *fakeFleet {
	return &fakeFleet{
		nodes: make(map[string]*fakeNode),
		down:  make(map[string]bool),
	}
}

func (f *fakeFleet) node(address string) *fakeNode {
	node, ok := f.nodes[address]
	if !ok {
		node = &fakeNode{}
		f.nodes[address] = node
	}
	return node
}

func (f *fakeFleet) Exec(ctx context.Context, address, command string) (int, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down[address] {
		return 0, nil, errors.New("connection timed out")
	}
	node := f.node(address)

	marker, _, _ := strings.Cut(command, "\n")
	switch marker {
	case markerQuery:
		return f.execQuery(node)
	case markerRequisition:
		return f.execRequisition(node, command)
	case markerFree:
		return f.execFree(node, command)
	case markerIdentityProbe:
		return 0, []string{"IDENTITY=" + node.identity}, nil
	}
	return 127, []string{"unrecognized script: " + marker}, nil
}

func (f *fakeFleet) execQuery(node *fakeNode) (int, []string, error) {
	bootstrap := "none"
	if node.holder != "" {
		if node.sentinel {
			bootstrap = "complete"
		} else {
			bootstrap = "partial"
		}
	}
	return 0, []string{
		"HOLDER_IDENTITY=" + node.holder,
		"INSTANCE_NAME=" + node.instance,
		"BOOTSTRAP=" + bootstrap,
	}, nil
}

func (f *fakeFleet) execRequisition(node *fakeNode, command string) (int, []string, error) {
	if node.wedged {
		return 1, []string{"RESULT=contended"}, nil
	}
	if node.holder != "" {
		return 1, []string{
			"RESULT=held",
			"HOLDER_IDENTITY=" + node.holder,
			"INSTANCE_NAME=" + node.instance,
		}, nil
	}

	node.holder = scriptParam(command, "IDENTITY")
	node.instance = scriptParam(command, "INSTANCE")
	node.authKeys = scriptKeyArguments(command)
	node.motd = scriptMOTDContent(command)
	node.scratch = true
	node.sentinel = true
	return 0, []string{"RESULT=ok"}, nil
}

func (f *fakeFleet) execFree(node *fakeNode, command string) (int, []string, error) {
	if node.wedged {
		// The real free blocks on the lock; the fake treats a wedged
		// node as permanently contended, which tests never rely on.
		return 1, []string{"RESULT=contended"}, nil
	}
	if node.holder == "" {
		return 1, []string{"RESULT=free"}, nil
	}
	if node.holder != scriptParam(command, "IDENTITY") {
		return 1, []string{
			"RESULT=identity-mismatch",
			"HOLDER_IDENTITY=" + node.holder,
		}, nil
	}

	node.holder = ""
	node.instance = ""
	node.sentinel = false
	node.authKeys = nil
	node.motd = ""
	node.scratch = false
	return 0, []string{"RESULT=ok"}, nil
}

// scriptParam extracts a single-quoted NAME='value' assignment from a
// rendered script. Test values never contain quote escapes.
func scriptParam(command, name string) string {
	pattern := regexp.MustCompile(`(?m)^` + name + `='([^']*)'$`)
	match := pattern.FindStringSubmatch(command)
	if match == nil {
		return ""
	}
	return match[1]
}

// scriptKeyArguments extracts the quoted key arguments of the access
// list printf in a requisition script.
var keyLinePattern = regexp.MustCompile(`(?m)^printf '%s\\n'((?: '[^']*')+) >"\$AUTH"$`)

func scriptKeyArguments(command string) []string {
	match := keyLinePattern.FindStringSubmatch(command)
	if match == nil {
		return nil
	}
	var keys []string
	for _, quoted := range strings.Split(strings.TrimSpace(match[1]), "' '") {
		keys = append(keys, strings.Trim(quoted, "'"))
	}
	return keys
}

// scriptMOTDContent extracts the message written to the MOTD file by
// a requisition script. The MOTD= assignment holds the file path; the
// content is the quoted printf argument.
var motdLinePattern = regexp.MustCompile(`(?m)^printf '%s\\n' '([^']*)' >"\$MOTD"$`)

func scriptMOTDContent(command string) string {
	match := motdLinePattern.FindStringSubmatch(command)
	if match == nil {
		return ""
	}
	return match[1]
}

// newTestExecutor wraps the fake fleet in a real executor so lease
// tests exercise the production fan-out path.
func newTestExecutor(fleet *fakeFleet) *remote.Executor {
	return remote.NewExecutor(fleet, 0, discardLogger())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAddress formats the i-th test node address.
func testAddress(i int) string {
	return fmt.Sprintf("10.1.0.%d", i+1)
}
