// Package obd decodes the text protocol spoken by ELM327-class OBD-II
// adapters. It is pure parsing: a transport layer sends the command
// strings built here over the serial/Bluetooth link and feeds the raw
// reply text back in; this package classifies, cleans, and decodes it
// into sensor values, trouble codes, and the VIN.
//
// All functions are reentrant and allocation-free on the hot path:
// variable-size output goes into caller-supplied buffers, fixed-size
// results are value structs, and the lookup tables are never mutated
// after program start.
package obd

// Limits from the OBD-II and ELM327 specs: at most 7 data bytes per
// response frame, a VIN is always exactly 17 characters, and a single
// mode 03 response realistically carries at most 32 trouble codes.
const (
	MaxDataBytes   = 7
	VINLength      = 17
	MaxDTCs        = 32
	MaxResponseLen = 256
)
