package provider

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"cardiag/internal/obd"
)

// Mock is a Provider that simulates a connected vehicle, for demos and
// for running the TUI without an adapter.
type Mock struct {
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}

	rpm      float32
	coolant  float32
	speed    float32
	throttle float32
	dtcs     obd.DTCList
	vin      string
}

func NewMock() *Mock {
	m := &Mock{
		rpm:     800,
		coolant: 75,
		speed:   0,
		stopCh:  make(chan struct{}),
		vin:     "WBA3B5FK7FN123456",
	}
	// Seed one stored code so the DTC page has something to show.
	_ = obd.ParseDTCResponse("43 01 03 00 00 00 00", &m.dtcs)
	return m
}

func (m *Mock) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}
	m.running = true

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.step()
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			}
		}
	}()
	return nil
}

// step random-walks the simulated values within plausible ranges.
func (m *Mock) step() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rpm += float32(rand.Intn(201) - 100)
	m.rpm = clamp(m.rpm, 600, 4000)
	m.coolant += float32(rand.Intn(21)-10) * 0.1
	m.coolant = clamp(m.coolant, 60, 110)
	m.speed += float32(rand.Intn(11) - 5)
	m.speed = clamp(m.speed, 0, 130)
	m.throttle += float32(rand.Intn(11) - 5)
	m.throttle = clamp(m.throttle, 0, 100)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.stopCh)
	m.running = false
}

func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Mock) GetRPM() (int, error) {
	val, err := m.GetSensor(obd.PIDEngineRPM)
	return int(val.Value), err
}

func (m *Mock) GetCoolantTemp() (float64, error) {
	val, err := m.GetSensor(obd.PIDCoolantTemp)
	return float64(val.Value), err
}

func (m *Mock) GetSpeed() (int, error) {
	val, err := m.GetSensor(obd.PIDVehicleSpeed)
	return int(val.Value), err
}

func (m *Mock) GetSensor(pid byte) (obd.SensorValue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var value float32
	switch pid {
	case obd.PIDEngineRPM:
		value = m.rpm
	case obd.PIDCoolantTemp:
		value = m.coolant
	case obd.PIDVehicleSpeed:
		value = m.speed
	case obd.PIDThrottle:
		value = m.throttle
	default:
		return obd.SensorValue{}, ErrNotConnected
	}

	name, err := obd.SensorName(pid)
	if err != nil {
		return obd.SensorValue{}, err
	}
	val := obd.SensorValue{PID: pid, Value: value, Name: name}
	switch pid {
	case obd.PIDEngineRPM:
		val.Unit = "rpm"
	case obd.PIDCoolantTemp:
		val.Unit = "C"
	case obd.PIDVehicleSpeed:
		val.Unit = "km/h"
	case obd.PIDThrottle:
		val.Unit = "%"
	}
	return val, nil
}

func (m *Mock) GetDTCs() (obd.DTCList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dtcs, nil
}

func (m *Mock) GetVIN() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vin, nil
}
