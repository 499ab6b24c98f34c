package unescape

import "testing"

func TestHex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
		ok    bool
	}{
		{name: "ascii A", input: "41", want: 'A', ok: true},
		{name: "emoji", input: "1F600", want: 0x1F600, ok: true},
		{name: "lowercase digits", input: "7f", want: 0x7f, ok: true},
		{name: "mixed case", input: "F7", want: 0xF7, ok: true},
		{name: "empty", input: "", want: 0xFFFD, ok: false},
		{name: "non-hex digit", input: "4g", want: 0xFFFD, ok: false},
		{name: "out of range", input: "FFFFFFFF", want: 0xFFFD, ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Hex(tc.input)
			if ok != tc.ok || (ok && got != tc.want) {
				t.Errorf("Hex(%q) = (%v, %v), want (%v, %v)", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestOctal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
		ok    bool
	}{
		{name: "A", input: "101", want: 'A', ok: true},
		{name: "NUL", input: "0", want: 0, ok: true},
		{name: "max 255", input: "377", want: 255, ok: true},
		{name: "partial", input: "7", want: 7, ok: true},
		{name: "empty", input: "", want: 0, ok: false},
		{name: "too long", input: "1234", want: 0, ok: false},
		{name: "bad digit", input: "18", want: 0, ok: false},
		{name: "out of range", input: "400", want: 0, ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Octal(tc.input)
			if ok != tc.ok || (ok && got != tc.want) {
				t.Errorf("Octal(%q) = (%v, %v), want (%v, %v)", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestOctalFull(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
		ok    bool
	}{
		{name: "beyond legacy range", input: "1000", want: 512, ok: true},
		{name: "empty", input: "", want: 0xFFFD, ok: false},
		{name: "bad digit", input: "18", want: 0xFFFD, ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := OctalFull(tc.input)
			if ok != tc.ok || (ok && got != tc.want) {
				t.Errorf("OctalFull(%q) = (%v, %v), want (%v, %v)", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestControl(t *testing.T) {
	tests := []struct {
		name string
		x    byte
		want rune
	}{
		{name: "A", x: 'A', want: 0x01},
		{name: "Z", x: 'Z', want: 0x1A},
		{name: "bracket", x: '[', want: 0x1B},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Control(tc.x); got != tc.want {
				t.Errorf("Control(%q) = %v, want %v", tc.x, got, tc.want)
			}
		})
	}
}

func TestDigitPredicates(t *testing.T) {
	for c := byte(0); c < 255; c++ {
		wantHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		if IsHexDigit(c) != wantHex {
			t.Errorf("IsHexDigit(%q) = %v, want %v", c, IsHexDigit(c), wantHex)
		}
		wantOct := c >= '0' && c <= '7'
		if IsOctalDigit(c) != wantOct {
			t.Errorf("IsOctalDigit(%q) = %v, want %v", c, IsOctalDigit(c), wantOct)
		}
	}
}
