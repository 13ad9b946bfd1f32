// Package testutil provides shared test helpers for comparing parsed
// trees and serialised records.
package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// RequireTreeEqual fails the test with a readable diff when two tree
// reductions (ast.Tuple values, AsRecord strings, or any other comparable
// shape) differ. A cmp diff over the full structure beats assert.Equal's
// one-line mismatch dump for deeply nested trees.
func RequireTreeEqual(t *testing.T, want, got any) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

// RequireRecordStable asserts two serialised records are byte-identical,
// the contract external fixture differs rely on.
func RequireRecordStable(t *testing.T, first, second string) {
	t.Helper()
	if first != second {
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("record output not stable (-first +second):\n%s", diff)
		}
	}
}
