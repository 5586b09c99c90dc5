package obd

// The adapter speaks in hex text like "41 0C 1A F8". Everything else in
// this package sits on top of these conversions.

const hexDigits = "0123456789ABCDEF"

// hexNibble returns the value of a hex digit (0-15), or -1 if c is not
// a hex digit. Both cases are accepted.
func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// HexToBytes converts a hex string into dst, skipping whitespace between
// byte pairs. Each byte needs exactly two hex digits; a lone trailing
// digit or a non-hex character yields ErrInvalidHex. If dst cannot hold
// the next byte the conversion stops with ErrBufferTooSmall before
// anything is written past the limit. Empty input yields zero bytes.
func HexToBytes(hex string, dst []byte) (int, error) {
	n := 0
	for i := 0; i < len(hex); {
		if isSpace(hex[i]) {
			i++
			continue
		}

		high := hexNibble(hex[i])
		if high < 0 {
			return 0, ErrInvalidHex
		}
		i++
		if i >= len(hex) {
			// Odd number of hex digits.
			return 0, ErrInvalidHex
		}
		low := hexNibble(hex[i])
		if low < 0 {
			return 0, ErrInvalidHex
		}
		i++

		if n >= len(dst) {
			return 0, ErrBufferTooSmall
		}
		dst[n] = byte(high<<4 | low)
		n++
	}
	return n, nil
}

// BytesToHex writes src as uppercase hex byte pairs separated by single
// spaces, no trailing space: {0x41, 0x0C} -> "41 0C". dst must hold
// 3*len(src)-1 bytes. Empty input writes nothing.
func BytesToHex(src, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if len(dst) < len(src)*3-1 {
		return 0, ErrBufferTooSmall
	}

	pos := 0
	for i, b := range src {
		dst[pos] = hexDigits[b>>4]
		dst[pos+1] = hexDigits[b&0x0F]
		pos += 2
		if i < len(src)-1 {
			dst[pos] = ' '
			pos++
		}
	}
	return pos, nil
}

// StripWhitespace removes spaces, tabs, CR and LF from b in place and
// returns the shortened slice over the same backing array.
func StripWhitespace(b []byte) []byte {
	w := 0
	for _, c := range b {
		if !isSpace(c) {
			b[w] = c
			w++
		}
	}
	return b[:w]
}
