package obd

// Trouble codes (mode 03). Each stored code is two bytes on the wire:
//
//	bits 15-14  category letter (00 P, 01 C, 10 B, 11 U)
//	bits 13-12  second digit (0-3)
//	bits 11-8   third digit
//	bits 7-4    fourth digit
//	bits 3-0    fifth digit
//
// 0x01 0x03 unpacks to P0103. A 0x00 0x00 pair is padding.

// DTCCategory is the subsystem a trouble code belongs to, taken from
// the top two bits of the first code byte.
type DTCCategory byte

const (
	Powertrain DTCCategory = 0 // P codes: engine, transmission
	Chassis    DTCCategory = 1 // C codes: ABS, steering
	Body       DTCCategory = 2 // B codes: airbags, windows
	Network    DTCCategory = 3 // U codes: CAN bus
)

const dtcCategoryLetters = "PCBU"

// Letter returns the category's code prefix: 'P', 'C', 'B' or 'U'.
func (c DTCCategory) Letter() byte {
	return dtcCategoryLetters[c&0x03]
}

func (c DTCCategory) String() string {
	switch c {
	case Powertrain:
		return "powertrain"
	case Chassis:
		return "chassis"
	case Body:
		return "body"
	case Network:
		return "network"
	}
	return "unknown"
}

// TroubleCode is one decoded DTC. Code holds the 14-bit numeric part
// (0x0103 for P0103); Formatted the canonical 5-character text.
type TroubleCode struct {
	Category  DTCCategory
	Code      uint16
	Formatted [5]byte
}

func (tc TroubleCode) String() string {
	return string(tc.Formatted[:])
}

// DTCList collects the codes of one mode 03 response in wire order.
// Truncated reports that the response carried more than MaxDTCs codes
// and the remainder was dropped.
type DTCList struct {
	Codes     [MaxDTCs]TroubleCode
	Count     int
	Truncated bool
}

// Strings returns the formatted codes, for display.
func (l *DTCList) Strings() []string {
	out := make([]string, l.Count)
	for i := 0; i < l.Count; i++ {
		out[i] = l.Codes[i].String()
	}
	return out
}

// BuildDTCRequest writes the stored-codes request "03\r" into dst,
// which must hold 3 bytes.
func BuildDTCRequest(dst []byte) (int, error) {
	if len(dst) < 3 {
		return 0, ErrBufferTooSmall
	}
	dst[0] = '0'
	dst[1] = '3'
	dst[2] = '\r'
	return 3, nil
}

func unpackDTC(b1, b2 byte) TroubleCode {
	cat := DTCCategory(b1 >> 6 & 0x03)
	d2 := b1 >> 4 & 0x03
	d3 := b1 & 0x0F
	d4 := b2 >> 4 & 0x0F
	d5 := b2 & 0x0F

	return TroubleCode{
		Category: cat,
		Code:     uint16(d2)<<12 | uint16(d3)<<8 | uint16(d4)<<4 | uint16(d5),
		Formatted: [5]byte{
			cat.Letter(),
			'0' + d2,
			hexDigits[d3],
			hexDigits[d4],
			hexDigits[d5],
		},
	}
}

// ParseDTCResponse parses a cleaned mode 03 reply like
// "43 01 03 01 04 00 00" into out. Byte 0 must be the 0x43 response
// header; the remainder is walked two bytes at a time, skipping 0x0000
// padding pairs. Collection stops at MaxDTCs entries; if more real
// pairs follow, out.Truncated is set instead of losing them silently.
func ParseDTCResponse(resp string, out *DTCList) error {
	if out == nil {
		return ErrInvalidArgument
	}
	*out = DTCList{}

	var buf [128]byte
	n, err := HexToBytes(resp, buf[:])
	if err != nil {
		return err
	}
	if n < 1 || buf[0] != 0x43 {
		return ErrParseFailed
	}

	for i := 1; i+1 < n; i += 2 {
		b1, b2 := buf[i], buf[i+1]
		if b1 == 0x00 && b2 == 0x00 {
			continue
		}
		if out.Count >= MaxDTCs {
			out.Truncated = true
			break
		}
		out.Codes[out.Count] = unpackDTC(b1, b2)
		out.Count++
	}
	return nil
}
