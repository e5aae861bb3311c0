package storage

import "testing"

func TestAsString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{[]byte("bytes"), "bytes"},
		{int64(7), "7"},
	}
	for _, tc := range tests {
		if got := AsString(tc.in); got != tc.want {
			t.Fatalf("AsString(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      any
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{" 42 ", 42, false},
		{int32(9), 9, false},
		{int64(9), 9, false},
		{"", 0, true},
		{"4.2", 0, true},
		{nil, 0, true},
	}
	for _, tc := range tests {
		got, err := AsInt(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("AsInt(%#v): want error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("AsInt(%#v) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
	}
}

func TestAsInt64_MillisecondTimestamps(t *testing.T) {
	t.Parallel()

	got, err := AsInt64("1541110994796")
	if err != nil || got != 1541110994796 {
		t.Fatalf("AsInt64 = %d, %v; want 1541110994796", got, err)
	}
}

func TestAsFloat(t *testing.T) {
	t.Parallel()

	if got, err := AsFloat(float32(2.5)); err != nil || got != 2.5 {
		t.Fatalf("AsFloat(float32) = %v, %v", got, err)
	}
	if got, err := AsFloat("183.21"); err != nil || got != 183.21 {
		t.Fatalf("AsFloat(string) = %v, %v", got, err)
	}
	if _, err := AsFloat("abc"); err == nil {
		t.Fatalf("AsFloat(abc): want error")
	}
}

func TestAsNullFloat(t *testing.T) {
	t.Parallel()

	got, err := AsNullFloat(nil)
	if err != nil || got != nil {
		t.Fatalf("AsNullFloat(nil) = %v, %v; want nil, nil", got, err)
	}
	got, err = AsNullFloat(float32(1.5))
	if err != nil || got == nil || *got != 1.5 {
		t.Fatalf("AsNullFloat(1.5) = %v, %v", got, err)
	}
}
