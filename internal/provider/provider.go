package provider

import (
	"context"
	"errors"

	"cardiag/internal/obd"
)

// Provider abstracts access to an OBD-II device. It owns the connection
// lifecycle and keeps the latest readings; getters never block on the
// wire.
type Provider interface {
	Start(ctx context.Context) error
	Stop()
	IsConnected() bool

	GetRPM() (int, error)
	GetCoolantTemp() (float64, error)
	GetSpeed() (int, error)
	GetSensor(pid byte) (obd.SensorValue, error)
	GetDTCs() (obd.DTCList, error)
	GetVIN() (string, error)
}

// ErrNotConnected is returned by getters while no adapter session is
// established or a reading has not arrived yet.
var ErrNotConnected = errors.New("provider: not connected")
