package obd

// A PID (parameter id) is one data point the vehicle can report.
// Requests are "MMPP\r" — mode byte, PID byte, carriage return:
//
//	mode 01 = live data, mode 02 = freeze frame snapshot
//
// Responses come back as response_mode (request+0x40), PID, data bytes:
// "41 0C 1A F8" is mode 01, PID 0C (engine RPM), two data bytes.

// Well-known mode and PID values used by the provider layer.
const (
	ModeLiveData    byte = 0x01
	ModeFreezeFrame byte = 0x02

	PIDDTCCount       byte = 0x01
	PIDEngineLoad     byte = 0x04
	PIDCoolantTemp    byte = 0x05
	PIDFuelPressure   byte = 0x0A
	PIDIntakePressure byte = 0x0B
	PIDEngineRPM      byte = 0x0C
	PIDVehicleSpeed   byte = 0x0D
	PIDTimingAdvance  byte = 0x0E
	PIDIntakeTemp     byte = 0x0F
	PIDMAFRate        byte = 0x10
	PIDThrottle       byte = 0x11
	PIDO2Voltage      byte = 0x14
	PIDRunTime        byte = 0x1F
)

// PIDResponse is the parsed form of a single-frame PID reply.
type PIDResponse struct {
	Mode    byte
	PID     byte
	Data    [MaxDataBytes]byte
	DataLen int
}

// Bytes returns the valid data bytes.
func (r *PIDResponse) Bytes() []byte {
	return r.Data[:r.DataLen]
}

// BuildPIDRequest writes the request command for (mode, pid) into dst:
// mode 0x01, pid 0x0C -> "010C\r". dst must hold 5 bytes.
func BuildPIDRequest(mode, pid byte, dst []byte) (int, error) {
	if len(dst) < 5 {
		return 0, ErrBufferTooSmall
	}
	dst[0] = hexDigits[mode>>4]
	dst[1] = hexDigits[mode&0x0F]
	dst[2] = hexDigits[pid>>4]
	dst[3] = hexDigits[pid&0x0F]
	dst[4] = '\r'
	return 5, nil
}

// ParsePIDResponse parses a cleaned PID reply like "41 0C 1A F8".
// Byte 0 is the response mode, byte 1 the PID, the rest (capped at
// MaxDataBytes) the data. Fewer than two bytes is ErrParseFailed.
func ParsePIDResponse(resp string) (PIDResponse, error) {
	var out PIDResponse
	var buf [64]byte

	n, err := HexToBytes(resp, buf[:])
	if err != nil {
		return out, err
	}
	if n < 2 {
		return out, ErrParseFailed
	}

	out.Mode = buf[0]
	out.PID = buf[1]
	out.DataLen = n - 2
	if out.DataLen > MaxDataBytes {
		out.DataLen = MaxDataBytes
	}
	copy(out.Data[:], buf[2:2+out.DataLen])
	return out, nil
}
