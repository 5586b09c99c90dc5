package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/tarm/serial"
	"go.uber.org/zap"

	"cardiag/internal/obd"
	"cardiag/pkg/log"
)

// PIDs refreshed on every poll cycle. The rest of the sensor table is
// still reachable through GetSensor once a reading has been cached.
var defaultPollPIDs = []byte{
	obd.PIDEngineRPM,
	obd.PIDCoolantTemp,
	obd.PIDVehicleSpeed,
	obd.PIDThrottle,
	obd.PIDIntakeTemp,
	obd.PIDEngineLoad,
}

// portOpener opens the physical link. Factored out so tests can hand
// the session an in-memory port.
type portOpener func() (io.ReadWriteCloser, error)

// Serial is a Provider backed by an ELM327-class adapter on a serial
// (or Bluetooth rfcomm) device. A background goroutine owns the port:
// it connects with bounded retries, runs the AT handshake, fetches the
// VIN once, then polls sensors and stored trouble codes, caching the
// results for the getters.
type Serial struct {
	mu        sync.RWMutex
	open      portOpener
	port      io.ReadWriteCloser
	running   bool
	connected bool
	stopCh    chan struct{}

	pollPIDs     []byte
	pollInterval time.Duration
	readTimeout  time.Duration
	resetDelay   time.Duration

	vin     string
	dtcs    obd.DTCList
	hasDTCs bool
	sensors map[byte]obd.SensorValue
}

// New creates a Serial provider for a device path such as /dev/rfcomm0
// or COM3.
func New(portName string, baud int) *Serial {
	open := func() (io.ReadWriteCloser, error) {
		return serial.OpenPort(&serial.Config{
			Name:        portName,
			Baud:        baud,
			ReadTimeout: 100 * time.Millisecond,
		})
	}
	return newSerial(open)
}

func newSerial(open portOpener) *Serial {
	return &Serial{
		open:         open,
		stopCh:       make(chan struct{}),
		pollPIDs:     defaultPollPIDs,
		pollInterval: 5 * time.Second,
		readTimeout:  2 * time.Second,
		resetDelay:   1500 * time.Millisecond,
		sensors:      make(map[byte]obd.SensorValue),
	}
}

func (s *Serial) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

func (s *Serial) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	if s.port != nil {
		s.port.Close()
	}
	s.running = false
	s.connected = false
}

func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Serial) GetRPM() (int, error) {
	val, err := s.GetSensor(obd.PIDEngineRPM)
	return int(val.Value), err
}

func (s *Serial) GetCoolantTemp() (float64, error) {
	val, err := s.GetSensor(obd.PIDCoolantTemp)
	return float64(val.Value), err
}

func (s *Serial) GetSpeed() (int, error) {
	val, err := s.GetSensor(obd.PIDVehicleSpeed)
	return int(val.Value), err
}

func (s *Serial) GetSensor(pid byte) (obd.SensorValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.sensors[pid]
	if !ok {
		return obd.SensorValue{}, ErrNotConnected
	}
	return val, nil
}

func (s *Serial) GetDTCs() (obd.DTCList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasDTCs {
		return obd.DTCList{}, ErrNotConnected
	}
	return s.dtcs, nil
}

func (s *Serial) GetVIN() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.vin == "" {
		return "", ErrNotConnected
	}
	return s.vin, nil
}

// run owns the port: reconnect with backoff, then poll until the
// session drops or the provider stops.
func (s *Serial) run(ctx context.Context) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}

		if err := s.connect(); err != nil {
			log.Warn("adapter connect failed", zap.Error(err), zap.Duration("backoff", backoff))
			s.setConnected(false)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			}
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			continue
		}

		backoff = time.Second
		s.setConnected(true)
		log.Info("adapter connected")

		s.refreshVIN()
		s.poll(ctx)
	}
}

// connect opens the port and runs the ELM327 handshake, retrying the
// whole sequence a few times before giving up on this cycle.
func (s *Serial) connect() error {
	return retry.Do(
		func() error {
			port, err := s.open()
			if err != nil {
				return err
			}
			s.mu.Lock()
			s.port = port
			s.mu.Unlock()

			if err := s.initialize(); err != nil {
				port.Close()
				return err
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

// initialize runs the AT handshake: reset, quiet the output, let the
// adapter pick the vehicle protocol, then probe with a mode 01 request
// so protocol detection actually happens.
func (s *Serial) initialize() error {
	raw, err := s.query(obd.CmdReset, s.resetDelay)
	if err != nil {
		return err
	}
	if !strings.Contains(raw, "ELM") {
		return fmt.Errorf("no ELM327 banner in reset response %q", raw)
	}

	for _, cmd := range []string{obd.CmdEchoOff, obd.CmdLinefeedOff, obd.CmdHeadersOff, obd.CmdProtocolAuto} {
		if _, err := s.query(cmd, 0); err != nil {
			return err
		}
	}

	var req [8]byte
	n, err := obd.BuildPIDRequest(obd.ModeLiveData, 0x00, req[:])
	if err != nil {
		return err
	}
	raw, err = s.query(string(req[:n]), 0)
	if err != nil {
		return err
	}
	var cleaned [obd.MaxResponseLen]byte
	if _, err := obd.CleanResponse(raw, cleaned[:]); err != nil {
		return fmt.Errorf("vehicle probe failed: %w", err)
	}
	return nil
}

// poll refreshes sensors and trouble codes until the session drops.
func (s *Serial) poll(ctx context.Context) {
	s.refreshSensors()
	s.refreshDTCs()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.refreshSensors()
			s.refreshDTCs()
		}
	}
}

func (s *Serial) refreshSensors() {
	for _, pid := range s.pollPIDs {
		val, err := s.readSensor(obd.ModeLiveData, pid)
		if err != nil {
			// NO DATA just means the vehicle doesn't report this PID.
			log.Debug("sensor read failed", zap.Uint8("pid", pid), zap.Error(err))
			continue
		}
		s.mu.Lock()
		s.sensors[pid] = val
		s.mu.Unlock()
	}
}

func (s *Serial) refreshDTCs() {
	var req [4]byte
	n, err := obd.BuildDTCRequest(req[:])
	if err != nil {
		return
	}
	cleaned, err := s.queryCleaned(string(req[:n]))
	if err != nil {
		// An empty store often answers NO DATA; treat it as no codes.
		if errors.Is(err, obd.ErrNoData) {
			s.mu.Lock()
			s.dtcs = obd.DTCList{}
			s.hasDTCs = true
			s.mu.Unlock()
		} else {
			log.Debug("dtc read failed", zap.Error(err))
		}
		return
	}

	var list obd.DTCList
	if err := obd.ParseDTCResponse(cleaned, &list); err != nil {
		log.Warn("dtc parse failed", zap.String("payload", cleaned), zap.Error(err))
		return
	}
	if list.Truncated {
		log.Warn("dtc list truncated", zap.Int("count", list.Count))
	}

	s.mu.Lock()
	s.dtcs = list
	s.hasDTCs = true
	s.mu.Unlock()
	log.Debug("dtcs refreshed", zap.Strings("codes", list.Strings()))
}

func (s *Serial) refreshVIN() {
	var req [8]byte
	n, err := obd.BuildVINRequest(req[:])
	if err != nil {
		return
	}
	cleaned, err := s.queryCleaned(string(req[:n]))
	if err != nil {
		log.Warn("vin read failed", zap.Error(err))
		return
	}

	var vin [obd.VINLength]byte
	m, err := obd.ParseVINResponse(cleaned, vin[:])
	if err != nil {
		log.Warn("vin parse failed", zap.String("payload", cleaned), zap.Error(err))
		return
	}

	s.mu.Lock()
	s.vin = string(vin[:m])
	s.mu.Unlock()
	log.Info("vin read", zap.String("vin", string(vin[:m])))
}

func (s *Serial) readSensor(mode, pid byte) (obd.SensorValue, error) {
	var req [8]byte
	n, err := obd.BuildPIDRequest(mode, pid, req[:])
	if err != nil {
		return obd.SensorValue{}, err
	}
	cleaned, err := s.queryCleaned(string(req[:n]))
	if err != nil {
		return obd.SensorValue{}, err
	}
	resp, err := obd.ParsePIDResponse(cleaned)
	if err != nil {
		return obd.SensorValue{}, err
	}
	return obd.DecodeSensor(resp)
}

// queryCleaned sends one command and returns the cleaned payload.
func (s *Serial) queryCleaned(cmd string) (string, error) {
	raw, err := s.query(cmd, 0)
	if err != nil {
		return "", err
	}
	var dst [obd.MaxResponseLen]byte
	n, err := obd.CleanResponse(raw, dst[:])
	if err != nil {
		return "", err
	}
	return string(dst[:n]), nil
}

// query writes a command and collects the raw transcript up to the
// adapter's ">" prompt. settle gives slow commands (ATZ) extra time
// before the first read.
func (s *Serial) query(cmd string, settle time.Duration) (string, error) {
	s.mu.RLock()
	port := s.port
	s.mu.RUnlock()
	if port == nil {
		return "", ErrNotConnected
	}

	log.Debug("write", zap.String("cmd", strings.TrimRight(cmd, "\r")))
	if _, err := port.Write([]byte(cmd)); err != nil {
		return "", err
	}
	if settle > 0 {
		time.Sleep(settle)
	}

	raw, err := s.readTranscript(port)
	log.Debug("read", zap.String("raw", raw), zap.Error(err))
	return raw, err
}

// readTranscript reads until the prompt or until the read timeout
// elapses with no progress; whatever was collected is returned either
// way, the cleaner sorts it out.
func (s *Serial) readTranscript(port io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 64)
	deadline := time.Now().Add(s.readTimeout)

	for time.Now().Before(deadline) {
		n, err := port.Read(buf)
		for i := 0; i < n; i++ {
			sb.WriteByte(buf[i])
			if buf[i] == '>' {
				return sb.String(), nil
			}
		}
		if n > 0 {
			deadline = time.Now().Add(s.readTimeout)
		}
		if err != nil {
			if err == io.EOF {
				// Serial read timeout; keep waiting for the prompt.
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return sb.String(), err
		}
	}
	return sb.String(), nil
}

func (s *Serial) setConnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = v
}
