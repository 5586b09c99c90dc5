package obd_test

import (
	"bytes"
	"errors"
	"testing"

	"cardiag/internal/obd"
)

func TestBuildPIDRequest(t *testing.T) {
	tests := []struct {
		mode     byte
		pid      byte
		expected string
	}{
		{obd.ModeLiveData, obd.PIDEngineRPM, "010C\r"},
		{obd.ModeLiveData, obd.PIDCoolantTemp, "0105\r"},
		{obd.ModeFreezeFrame, obd.PIDEngineRPM, "020C\r"},
		{0xAB, 0xCD, "ABCD\r"},
	}

	for _, tt := range tests {
		var dst [8]byte
		n, err := obd.BuildPIDRequest(tt.mode, tt.pid, dst[:])
		if err != nil {
			t.Fatalf("BuildPIDRequest(%#x, %#x) error = %v", tt.mode, tt.pid, err)
		}
		if got := string(dst[:n]); got != tt.expected {
			t.Errorf("BuildPIDRequest(%#x, %#x) = %q, want %q", tt.mode, tt.pid, got, tt.expected)
		}
	}
}

func TestBuildPIDRequestBufferTooSmall(t *testing.T) {
	var dst [4]byte
	if _, err := obd.BuildPIDRequest(0x01, 0x0C, dst[:]); !errors.Is(err, obd.ErrBufferTooSmall) {
		t.Fatalf("error = %v, want ErrBufferTooSmall", err)
	}
}

func TestParsePIDResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    string
		mode    byte
		pid     byte
		data    []byte
		err     error
	}{
		{
			name: "rpm",
			resp: "41 0C 1A F8",
			mode: 0x41, pid: 0x0C,
			data: []byte{0x1A, 0xF8},
		},
		{
			name: "speed single data byte",
			resp: "41 0D 3C",
			mode: 0x41, pid: 0x0D,
			data: []byte{0x3C},
		},
		{
			name: "mode and pid only",
			resp: "41 0C",
			mode: 0x41, pid: 0x0C,
			data: []byte{},
		},
		{
			name: "data capped at seven bytes",
			resp: "41 00 01 02 03 04 05 06 07 08",
			mode: 0x41, pid: 0x00,
			data: []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
		},
		{name: "single byte", resp: "41", err: obd.ErrParseFailed},
		{name: "empty", resp: "", err: obd.ErrParseFailed},
		{name: "bad hex", resp: "41 GG", err: obd.ErrInvalidHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := obd.ParsePIDResponse(tt.resp)
			if !errors.Is(err, tt.err) {
				t.Fatalf("ParsePIDResponse(%q) error = %v, want %v", tt.resp, err, tt.err)
			}
			if tt.err != nil {
				return
			}
			if resp.Mode != tt.mode || resp.PID != tt.pid {
				t.Errorf("mode/pid = %#x/%#x, want %#x/%#x", resp.Mode, resp.PID, tt.mode, tt.pid)
			}
			if !bytes.Equal(resp.Bytes(), tt.data) {
				t.Errorf("data = % X, want % X", resp.Bytes(), tt.data)
			}
		})
	}
}
