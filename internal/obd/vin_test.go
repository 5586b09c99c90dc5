package obd_test

import (
	"errors"
	"testing"

	"cardiag/internal/obd"
)

// WBA3B5FK7FN123456 split over five frames, last one zero-padded.
const cleanVINMultiline = "49 02 01 57 42 41 33\r" +
	"49 02 02 42 35 46 4B\r" +
	"49 02 03 37 46 4E 31\r" +
	"49 02 04 32 33 34 35\r" +
	"49 02 05 36 00 00 00"

const expectedVIN = "WBA3B5FK7FN123456"

func TestBuildVINRequest(t *testing.T) {
	var dst [8]byte
	n, err := obd.BuildVINRequest(dst[:])
	if err != nil {
		t.Fatalf("BuildVINRequest error = %v", err)
	}
	if got := string(dst[:n]); got != "0902\r" {
		t.Errorf("request = %q, want %q", got, "0902\r")
	}

	var small [4]byte
	if _, err := obd.BuildVINRequest(small[:]); !errors.Is(err, obd.ErrBufferTooSmall) {
		t.Errorf("error = %v, want ErrBufferTooSmall", err)
	}
}

func TestParseVINResponse(t *testing.T) {
	var vin [obd.VINLength]byte
	n, err := obd.ParseVINResponse(cleanVINMultiline, vin[:])
	if err != nil {
		t.Fatalf("ParseVINResponse error = %v", err)
	}
	if got := string(vin[:n]); got != expectedVIN {
		t.Errorf("vin = %q, want %q", got, expectedVIN)
	}
}

func TestParseVINResponseSkipsForeignLines(t *testing.T) {
	// Interleaved noise: short frames, wrong headers, and broken hex
	// are skipped without failing the whole parse.
	resp := "SEARCHING...\r" +
		"49 02 01 57 42 41 33\r" +
		"49 02\r" +
		"41 0C 1A F8\r" +
		"49 02 02 42 35 46 4B\r" +
		"49 02 03 37 46 4E 31\r" +
		"49 02 04 32 33 34 35\r" +
		"49 02 05 36 00 00 00"

	var vin [obd.VINLength]byte
	n, err := obd.ParseVINResponse(resp, vin[:])
	if err != nil {
		t.Fatalf("ParseVINResponse error = %v", err)
	}
	if got := string(vin[:n]); got != expectedVIN {
		t.Errorf("vin = %q, want %q", got, expectedVIN)
	}
}

func TestParseVINResponseErrors(t *testing.T) {
	tests := []struct {
		name string
		resp string
		err  error
	}{
		{"single frame is too short", "49 02 01 57 42 41 33", obd.ErrParseFailed},
		{"empty", "", obd.ErrParseFailed},
		{"no valid frames", "41 0C 1A F8", obd.ErrParseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vin [obd.VINLength]byte
			if _, err := obd.ParseVINResponse(tt.resp, vin[:]); !errors.Is(err, tt.err) {
				t.Errorf("ParseVINResponse(%q) error = %v, want %v", tt.resp, err, tt.err)
			}
		})
	}
}

func TestParseVINResponseBufferTooSmall(t *testing.T) {
	var vin [obd.VINLength - 1]byte
	if _, err := obd.ParseVINResponse(cleanVINMultiline, vin[:]); !errors.Is(err, obd.ErrBufferTooSmall) {
		t.Fatalf("error = %v, want ErrBufferTooSmall", err)
	}
}
