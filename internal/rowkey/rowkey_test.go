package rowkey

import (
	"reflect"
	"testing"
)

func TestOf_FieldBoundaries(t *testing.T) {
	t.Parallel()

	// ("ab","c") and ("a","bc") must not collide.
	if Of("ab", "c") == Of("a", "bc") {
		t.Fatalf("Of should separate fields; got equal keys for different rows")
	}
	if Of("a") == Of("a", "") {
		t.Fatalf("Of should distinguish arity; got equal keys")
	}
	if Of("x", "y") != Of("x", "y") {
		t.Fatalf("Of should be deterministic")
	}
}

func TestNullFloat_NilDistinctFromZero(t *testing.T) {
	t.Parallel()

	zero := 0.0
	if NullFloat(nil) == NullFloat(&zero) {
		t.Fatalf("nil and 0 must encode differently")
	}
}

func TestKeepLast_PolicyAndOrder(t *testing.T) {
	t.Parallel()

	rows := []string{"a", "b", "a", "c", "b"}
	got := KeepLast(rows, func(s string) Key { return Of(s) })

	// Survivors sit at the position of their last occurrence.
	want := []string{"a", "c", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("KeepLast = %v, want %v", got, want)
	}
}

func TestKeepLast_Idempotent(t *testing.T) {
	t.Parallel()

	rows := []string{"x", "x", "y", "x"}
	key := func(s string) Key { return Of(s) }

	once := KeepLast(rows, key)
	twice := KeepLast(once, key)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("dedup not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestKeepLast_NoDuplicates(t *testing.T) {
	t.Parallel()

	rows := []string{"a", "b", "c"}
	got := KeepLast(rows, func(s string) Key { return Of(s) })
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("KeepLast on unique rows = %v, want unchanged %v", got, rows)
	}
}
