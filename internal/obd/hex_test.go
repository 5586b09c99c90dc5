package obd_test

import (
	"bytes"
	"errors"
	"testing"

	"cardiag/internal/obd"
)

func TestHexToBytes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
		err      error
	}{
		{
			name:     "spaced pairs",
			input:    "41 0C 1A F8",
			expected: []byte{0x41, 0x0C, 0x1A, 0xF8},
		},
		{
			name:     "no spaces",
			input:    "410C1AF8",
			expected: []byte{0x41, 0x0C, 0x1A, 0xF8},
		},
		{
			name:     "lowercase",
			input:    "de ad",
			expected: []byte{0xDE, 0xAD},
		},
		{
			name:     "mixed case and whitespace",
			input:    "dE\tAd\r\n",
			expected: []byte{0xDE, 0xAD},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []byte{},
		},
		{
			name:     "whitespace only",
			input:    " \r\n\t",
			expected: []byte{},
		},
		{
			name:  "lone trailing digit",
			input: "41 0",
			err:   obd.ErrInvalidHex,
		},
		{
			name:  "non-hex character",
			input: "41 ZZ",
			err:   obd.ErrInvalidHex,
		},
		{
			name:  "non-hex in low nibble",
			input: "4G",
			err:   obd.ErrInvalidHex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst [32]byte
			n, err := obd.HexToBytes(tt.input, dst[:])
			if !errors.Is(err, tt.err) {
				t.Fatalf("HexToBytes(%q) error = %v, want %v", tt.input, err, tt.err)
			}
			if tt.err != nil {
				return
			}
			if !bytes.Equal(dst[:n], tt.expected) {
				t.Errorf("HexToBytes(%q) = % X, want % X", tt.input, dst[:n], tt.expected)
			}
		})
	}
}

func TestHexToBytesBufferTooSmall(t *testing.T) {
	var dst [2]byte
	_, err := obd.HexToBytes("41 0C 1A", dst[:])
	if !errors.Is(err, obd.ErrBufferTooSmall) {
		t.Fatalf("error = %v, want ErrBufferTooSmall", err)
	}
	// The two bytes that fit must be intact, nothing written past them.
	if dst[0] != 0x41 || dst[1] != 0x0C {
		t.Errorf("dst = % X, want 41 0C", dst[:])
	}
}

func TestBytesToHex(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"two bytes", []byte{0x41, 0x0C}, "41 0C"},
		{"single byte", []byte{0xFF}, "FF"},
		{"zero byte", []byte{0x00}, "00"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst [64]byte
			n, err := obd.BytesToHex(tt.input, dst[:])
			if err != nil {
				t.Fatalf("BytesToHex(% X) error = %v", tt.input, err)
			}
			if got := string(dst[:n]); got != tt.expected {
				t.Errorf("BytesToHex(% X) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBytesToHexBufferTooSmall(t *testing.T) {
	var dst [5]byte // "41 0C" needs 5, "41 0C 1A" needs 8
	if _, err := obd.BytesToHex([]byte{0x41, 0x0C, 0x1A}, dst[:]); !errors.Is(err, obd.ErrBufferTooSmall) {
		t.Fatalf("error = %v, want ErrBufferTooSmall", err)
	}
	if n, err := obd.BytesToHex([]byte{0x41, 0x0C}, dst[:]); err != nil || n != 5 {
		t.Fatalf("exact-fit encode = (%d, %v), want (5, nil)", n, err)
	}
}

// Encoding, decoding, and re-encoding must be stable for every length
// up to a full DTC response.
func TestHexRoundTrip(t *testing.T) {
	for length := 0; length <= 32; length++ {
		src := make([]byte, length)
		for i := range src {
			src[i] = byte(i*7 + 13)
		}

		var text [3 * 32]byte
		n, err := obd.BytesToHex(src, text[:])
		if err != nil {
			t.Fatalf("len %d: encode error: %v", length, err)
		}

		var back [32]byte
		m, err := obd.HexToBytes(string(text[:n]), back[:])
		if err != nil {
			t.Fatalf("len %d: decode error: %v", length, err)
		}
		if !bytes.Equal(back[:m], src) {
			t.Fatalf("len %d: round trip = % X, want % X", length, back[:m], src)
		}
	}
}

func TestStripWhitespace(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"41 0C 1A F8\r\n", "410C1AF8"},
		{"  \t ", ""},
		{"410C", "410C"},
		{"", ""},
	}

	for _, tt := range tests {
		got := obd.StripWhitespace([]byte(tt.input))
		if string(got) != tt.expected {
			t.Errorf("StripWhitespace(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
