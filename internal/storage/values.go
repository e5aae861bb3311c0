package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// Driver value conversion. Query materializes rows as []any with whatever Go
// types the driver chose (varchar → string, int4 → int32, real → float32,
// NULL → nil). Components convert at their boundary into explicit, typed
// records; these helpers centralize the type switches.

// AsString converts a driver value to a string. NULL becomes "".
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// AsInt converts a driver value to an int. Staging event columns are all
// varchar, so numeric fields usually arrive as strings and are parsed here.
func AsInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int16:
		return int(t), nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("parse int %q: %w", t, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

// AsInt64 converts a driver value to an int64 (millisecond timestamps).
func AsInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse int64 %q: %w", t, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", v)
	}
}

// AsFloat converts a driver value to a float64.
func AsFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("parse float %q: %w", t, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

// AsNullFloat converts a nullable driver value to *float64. NULL stays nil.
func AsNullFloat(v any) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	f, err := AsFloat(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
