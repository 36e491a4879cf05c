package richtext

// Shared test helpers for the richtext package.

import (
	"reflect"
	"testing"
)

func assertNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertEqual[T any](t *testing.T, name string, got, want T) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s = %#v, want %#v", name, got, want)
	}
}

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	c, err := NewCompiler(DefaultOptions())
	assertNoErr(t, err)
	return c
}

// opsOfKind returns the operations of kind k, in order.
func opsOfKind(ops []Operation, k OpKind) []Operation {
	var out []Operation
	for _, op := range ops {
		if op.Kind() == k {
			out = append(out, op)
		}
	}
	return out
}
