package shortme

import (
	"errors"
	"testing"
)

func TestEncodeBase62(t *testing.T) {
	cases := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{9, "9"},
		{10, "A"},
		{35, "Z"},
		{36, "a"},
		{61, "z"},
		{62, "10"},
		{63, "11"},
		{3843, "zz"},
		{3844, "100"},
		{123456789, "8M0kX"},
		{18446744073709551615, "LygHa16AHYF"}, // max uint64
	}
	for _, tc := range cases {
		if got := EncodeBase62(tc.n); got != tc.want {
			t.Errorf("EncodeBase62(%d): got %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestDecodeBase62(t *testing.T) {
	cases := []struct {
		code string
		want uint64
	}{
		{"0", 0},
		{"z", 61},
		{"10", 62},
		{"8M0kX", 123456789},
		{"LygHa16AHYF", 18446744073709551615},
	}
	for _, tc := range cases {
		got, err := DecodeBase62(tc.code)
		if err != nil {
			t.Fatalf("DecodeBase62(%q): unexpected error %v", tc.code, err)
		}
		if got != tc.want {
			t.Errorf("DecodeBase62(%q): got %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestBase62RoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 61, 62, 4095, 1 << 20, 1 << 40, 987654321} {
		code := EncodeBase62(n)
		got, err := DecodeBase62(code)
		if err != nil {
			t.Fatalf("round trip %d via %q: %v", n, code, err)
		}
		if got != n {
			t.Errorf("round trip %d via %q: got %d", n, code, got)
		}
	}
}

func TestDecodeBase62_InvalidInput(t *testing.T) {
	for _, code := range []string{"", "abc!", "短码", "a b", "-", "_"} {
		if _, err := DecodeBase62(code); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("DecodeBase62(%q): got %v, want ErrInvalidCode", code, err)
		}
	}
}

func TestDecodeBase62_Overflow(t *testing.T) {
	// max uint64 is "LygHa16AHYF"; one past it must overflow.
	for _, code := range []string{"LygHa16AHYG", "zzzzzzzzzzz", "100000000000"} {
		if _, err := DecodeBase62(code); !errors.Is(err, ErrCodeOverflow) {
			t.Errorf("DecodeBase62(%q): got %v, want ErrCodeOverflow", code, err)
		}
	}
}

func TestEncodeBase62_Canonical(t *testing.T) {
	// 编码结果不带前导零,一个数只有一个规范形式。
	if got := EncodeBase62(62); got == "010" {
		t.Fatalf("EncodeBase62(62) produced leading zero: %q", got)
	}
	got, err := DecodeBase62("010")
	if err != nil {
		t.Fatalf("DecodeBase62(010): %v", err)
	}
	if got != 62 {
		t.Fatalf("DecodeBase62(010): got %d, want 62", got)
	}
	if EncodeBase62(got) != "10" {
		t.Fatalf("canonical form of 62: got %q, want %q", EncodeBase62(got), "10")
	}
}
