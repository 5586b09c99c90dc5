package obd

// VIN retrieval (mode 09, PID 02). Seventeen characters do not fit in
// one OBD frame, so the reply arrives as several framed lines:
//
//	49 02 01 57 42 41 33
//	49 02 02 42 35 46 4B
//	...
//
// Each line repeats the 49 02 response header, carries a sequence
// number, then up to four ASCII bytes of the VIN. The last frame is
// padded with 0x00.

// BuildVINRequest writes the VIN request "0902\r" into dst, which must
// hold 5 bytes.
func BuildVINRequest(dst []byte) (int, error) {
	if len(dst) < 5 {
		return 0, ErrBufferTooSmall
	}
	dst[0] = '0'
	dst[1] = '9'
	dst[2] = '0'
	dst[3] = '2'
	dst[4] = '\r'
	return 5, nil
}

// ParseVINResponse reassembles the 17-character VIN from a cleaned
// multi-line mode 09 reply into vin, which must hold VINLength bytes.
// Lines that fail to hex-decode, are shorter than four bytes, or lack
// the 49 02 header are skipped rather than fatal; the sequence byte and
// 0x00 padding are dropped. Anything other than exactly 17 collected
// characters is ErrParseFailed.
func ParseVINResponse(resp string, vin []byte) (int, error) {
	if len(vin) < VINLength {
		return 0, ErrBufferTooSmall
	}

	pos := 0
	i := 0
	for i < len(resp) && pos < VINLength {
		for i < len(resp) && (resp[i] == '\r' || resp[i] == '\n') {
			i++
		}
		if i >= len(resp) {
			break
		}
		start := i
		for i < len(resp) && resp[i] != '\r' && resp[i] != '\n' {
			i++
		}

		var frame [16]byte
		n, err := HexToBytes(resp[start:i], frame[:])
		if err != nil {
			continue
		}
		if n < 4 || frame[0] != 0x49 || frame[1] != 0x02 {
			continue
		}

		// frame[2] is the sequence number; VIN data starts at 3.
		for _, b := range frame[3:n] {
			if b == 0x00 {
				continue
			}
			if pos >= VINLength {
				break
			}
			vin[pos] = b
			pos++
		}
	}

	if pos != VINLength {
		return 0, ErrParseFailed
	}
	return pos, nil
}
