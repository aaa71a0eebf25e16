// Package ttesting contains assertion helpers shared by the package tests.
//
// Every helper runs its comparison as a named subtest, so a failing table
// reports which property went wrong.
package ttesting

import (
	"testing"

	"badc0de.net/pkg/go-texunpack/geom"
)

func AssertEqualInt(t *testing.T, name string, got, want int) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualString(t *testing.T, name string, got, want string) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %q; want %q", got, want)
		}
	})
}

func AssertEqualBool(t *testing.T, name string, got, want bool) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %t; want %t", got, want)
		}
	})
}

func AssertEqualFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %g; want %g", got, want)
		}
	})
}

func AssertEqualRect(t *testing.T, name string, got, want geom.Rect) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %+v; want %+v", got, want)
		}
	})
}

func AssertEqualStrings(t *testing.T, name string, got, want []string) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if len(got) != len(want) {
			t.Fatalf("got %d entries %q; want %d entries %q", len(got), got, len(want), want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("entry %d: got %q; want %q", i, got[i], want[i])
			}
		}
	})
}
