package obd

import "strings"

// ELM327 adapter dialect: AT commands for configuration, then OBD
// requests as hex text. The adapter echoes commands (until ATE0),
// appends the vehicle's reply, and finishes with a ">" prompt.

// Adapter configuration commands. The trailing \r is the ELM327's
// end-of-command marker.
const (
	CmdReset        = "ATZ\r"   // reset to defaults, prints version banner
	CmdEchoOff      = "ATE0\r"  // stop echoing our commands
	CmdLinefeedOff  = "ATL0\r"  // CR-only line endings
	CmdProtocolAuto = "ATSP0\r" // auto-detect the vehicle protocol
	CmdHeadersOn    = "ATH1\r"  // include header bytes in responses
	CmdHeadersOff   = "ATH0\r"  // hide header bytes
)

// ResponseType classifies one line of adapter output.
type ResponseType int

const (
	ResponseData    ResponseType = iota // hex data bytes
	ResponseOK                          // AT command acknowledged
	ResponseNoData                      // vehicle did not respond
	ResponseError                       // adapter reported an error
	ResponsePrompt                      // ">" ready for the next command
	ResponseUnknown                     // anything else
)

func (t ResponseType) String() string {
	switch t {
	case ResponseData:
		return "data"
	case ResponseOK:
		return "ok"
	case ResponseNoData:
		return "no data"
	case ResponseError:
		return "error"
	case ResponsePrompt:
		return "prompt"
	}
	return "unknown"
}

// Classify determines what kind of line the adapter sent. Checks run in
// priority order and the first match wins; leading whitespace and line
// separators are skipped first.
func Classify(line string) ResponseType {
	i := 0
	for i < len(line) && isSpace(line[i]) {
		i++
	}
	line = line[i:]

	switch {
	case line == "":
		return ResponseUnknown
	case line[0] == '>':
		return ResponsePrompt
	case strings.HasPrefix(line, "OK"):
		return ResponseOK
	case strings.HasPrefix(line, "NO DATA"):
		return ResponseNoData
	case line[0] == '?',
		strings.HasPrefix(line, "ERROR"),
		strings.HasPrefix(line, "UNABLE TO CONNECT"),
		strings.HasPrefix(line, "BUS INIT"),
		strings.HasPrefix(line, "CAN ERROR"),
		strings.HasPrefix(line, "STOPPED"):
		return ResponseError
	case strings.HasPrefix(line, "ELM"):
		// Version banner after ATZ: the reset worked.
		return ResponseOK
	case hexNibble(line[0]) >= 0:
		return ResponseData
	}
	return ResponseUnknown
}

// CleanResponse extracts the data payload from a raw adapter transcript.
//
// Raw output for a single request looks like "010C\r41 0C 1A F8\r\r>":
// command echo, the data we want, blank lines, prompt. This walks the
// transcript line by line until the prompt, keeps only lines that
// classify as data and are not echoes of our own request (response mode
// bytes are request+0x40, so a first byte below 0x41 is an echo), and
// joins accepted lines with a single \r so multi-frame payloads like
// the VIN survive. The cleaned text is written into dst.
//
// If no data line is found the transcript is scanned for a reason:
// ErrNoData for "NO DATA", ErrAdapter for "?" or "ERROR", otherwise
// ErrParseFailed.
func CleanResponse(raw string, dst []byte) (int, error) {
	pos := 0
	found := false

	i := 0
	for i < len(raw) {
		for i < len(raw) && (raw[i] == '\r' || raw[i] == '\n') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}

		start := i
		for i < len(raw) && raw[i] != '\r' && raw[i] != '\n' && raw[i] != '>' {
			i++
		}
		line := strings.TrimLeft(raw[start:i], " \t")
		if line == "" || Classify(line) != ResponseData {
			continue
		}

		// Echo filter. Decode the first hex byte pair; anything below
		// 0x41 is our own request coming back, not a response.
		if len(line) < 2 {
			continue
		}
		high, low := hexNibble(line[0]), hexNibble(line[1])
		if high < 0 || low < 0 {
			continue
		}
		if high<<4|low < 0x41 {
			continue
		}

		if found {
			if pos >= len(dst) {
				return 0, ErrBufferTooSmall
			}
			dst[pos] = '\r'
			pos++
		}
		if pos+len(line) > len(dst) {
			return 0, ErrBufferTooSmall
		}
		copy(dst[pos:], line)
		pos += len(line)
		found = true
	}

	if !found {
		switch {
		case strings.Contains(raw, "NO DATA"):
			return 0, ErrNoData
		case strings.Contains(raw, "?"), strings.Contains(raw, "ERROR"):
			return 0, ErrAdapter
		}
		return 0, ErrParseFailed
	}

	for pos > 0 && (dst[pos-1] == ' ' || dst[pos-1] == '\t') {
		pos--
	}
	return pos, nil
}
