package obd

// Sensor decoding: raw PID data bytes into engineering units using the
// SAE J1979 formulas. A and B are the first and second data bytes.
// Each supported PID is one row in the table below; adding a PID is
// adding a row.

// SensorValue is a decoded reading. Name and Unit reference the static
// sensor table and are never allocated per call.
type SensorValue struct {
	PID   byte
	Value float32
	Name  string
	Unit  string
}

// formula identifies one of the closed set of J1979 transforms. The
// tagged-constant-plus-switch form keeps the table data-only.
type formula int

const (
	formulaPercent       formula = iota // A * 100 / 255
	formulaTempOffset40                 // A - 40
	formulaFuelTrim                     // (A - 128) * 100 / 128
	formulaFuelPressure                 // A * 3
	formulaDirect                       // A
	formulaRPM                          // ((A * 256) + B) / 4
	formulaTimingAdvance                // A / 2 - 64
	formulaMAF                          // ((A * 256) + B) / 100
	formulaO2Voltage                    // A / 200
	formulaRuntime                      // (A * 256) + B
	formulaDTCCount                     // A & 0x7F (bit 7 is the MIL)
)

func (f formula) eval(data []byte) float32 {
	a := float32(data[0])
	switch f {
	case formulaPercent:
		return a * 100.0 / 255.0
	case formulaTempOffset40:
		return a - 40.0
	case formulaFuelTrim:
		return (a - 128.0) * 100.0 / 128.0
	case formulaFuelPressure:
		return a * 3.0
	case formulaDirect:
		return a
	case formulaRPM:
		return (a*256.0 + float32(data[1])) / 4.0
	case formulaTimingAdvance:
		return a/2.0 - 64.0
	case formulaMAF:
		return (a*256.0 + float32(data[1])) / 100.0
	case formulaO2Voltage:
		return a / 200.0
	case formulaRuntime:
		return a*256.0 + float32(data[1])
	case formulaDTCCount:
		return float32(data[0] & 0x7F)
	}
	return 0
}

type sensorEntry struct {
	pid       byte
	name      string
	unit      string
	byteCount int // data bytes the formula needs
	formula   formula
}

var sensorTable = []sensorEntry{
	{PIDDTCCount, "DTC Count", "", 4, formulaDTCCount},
	{PIDEngineLoad, "Engine Load", "%", 1, formulaPercent},
	{PIDCoolantTemp, "Coolant Temperature", "C", 1, formulaTempOffset40},
	{0x06, "Short Term Fuel Trim B1", "%", 1, formulaFuelTrim},
	{0x07, "Long Term Fuel Trim B1", "%", 1, formulaFuelTrim},
	{PIDFuelPressure, "Fuel Pressure", "kPa", 1, formulaFuelPressure},
	{PIDIntakePressure, "Intake Manifold Pressure", "kPa", 1, formulaDirect},
	{PIDEngineRPM, "Engine RPM", "rpm", 2, formulaRPM},
	{PIDVehicleSpeed, "Vehicle Speed", "km/h", 1, formulaDirect},
	{PIDTimingAdvance, "Timing Advance", "deg", 1, formulaTimingAdvance},
	{PIDIntakeTemp, "Intake Air Temperature", "C", 1, formulaTempOffset40},
	{PIDMAFRate, "MAF Air Flow Rate", "g/s", 2, formulaMAF},
	{PIDThrottle, "Throttle Position", "%", 1, formulaPercent},
	{PIDO2Voltage, "O2 Sensor 1 Voltage", "V", 1, formulaO2Voltage},
	{PIDRunTime, "Run Time Since Start", "sec", 2, formulaRuntime},
}

// Linear search; the table is small.
func findSensor(pid byte) *sensorEntry {
	for i := range sensorTable {
		if sensorTable[i].pid == pid {
			return &sensorTable[i]
		}
	}
	return nil
}

// DecodeSensor converts a parsed PID response into a reading with name
// and unit. ErrUnknownPID if the PID is not in the table,
// ErrParseFailed if the response carries fewer data bytes than the
// formula needs.
func DecodeSensor(resp PIDResponse) (SensorValue, error) {
	entry := findSensor(resp.PID)
	if entry == nil {
		return SensorValue{}, ErrUnknownPID
	}
	if resp.DataLen < entry.byteCount {
		return SensorValue{}, ErrParseFailed
	}
	return SensorValue{
		PID:   resp.PID,
		Value: entry.formula.eval(resp.Bytes()),
		Name:  entry.name,
		Unit:  entry.unit,
	}, nil
}

// SensorName returns the display name for a PID without decoding data,
// for labeling before a value arrives.
func SensorName(pid byte) (string, error) {
	entry := findSensor(pid)
	if entry == nil {
		return "", ErrUnknownPID
	}
	return entry.name, nil
}

// SupportedPIDs returns the PIDs present in the sensor table, in table
// order.
func SupportedPIDs() []byte {
	pids := make([]byte, len(sensorTable))
	for i := range sensorTable {
		pids[i] = sensorTable[i].pid
	}
	return pids
}
