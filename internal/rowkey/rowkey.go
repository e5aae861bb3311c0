// Package rowkey computes identity keys for staging rows and implements the
// loader's keep-last deduplication policy.
//
// A row's key is a 128-bit xxh3 hash over its canonical field encoding.
// Hashing instead of concatenated-string map keys keeps the dedup set small
// when staging batches run to millions of rows; at 128 bits, collisions are
// not a practical concern for this data volume.
package rowkey

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Key identifies a row by content.
type Key = xxh3.Uint128

// sep separates encoded fields so that ("ab","c") and ("a","bc") hash
// differently. 0x1f is the ASCII unit separator and cannot appear in the
// staged text fields.
const sep = "\x1f"

// Of hashes the canonical encoding of the given fields.
func Of(fields ...string) Key {
	return xxh3.HashString128(strings.Join(fields, sep))
}

// Float encodes a float field for hashing.
func Float(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// NullFloat encodes a nullable float field for hashing; nil encodes
// distinctly from any real value.
func NullFloat(f *float64) string {
	if f == nil {
		return "\x00"
	}
	return Float(*f)
}

// Int encodes an integer field for hashing.
func Int(i int64) string {
	return strconv.FormatInt(i, 10)
}

// KeepLast removes exact-duplicate rows, keeping each row's last occurrence
// in its original position. This matches the legacy loader's dedup policy
// (drop_duplicates keep="last"): when duplicates collide, the survivor is
// the one seen last in staging scan order.
func KeepLast[T any](rows []T, key func(T) Key) []T {
	last := make(map[Key]int, len(rows))
	for i, r := range rows {
		last[key(r)] = i
	}
	out := make([]T, 0, len(last))
	for i, r := range rows {
		if last[key(r)] == i {
			out = append(out, r)
		}
	}
	return out
}
