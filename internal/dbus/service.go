package dbus

import (
	"encoding/json"
	"fmt"

	godbus "github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/engMANP/carat/internal/sampler"
	"github.com/engMANP/carat/internal/storage"
)

const (
	busName   = "org.caratproject.Sampler"
	objPath   = "/org/caratproject/Sampler"
	ifaceName = "org.caratproject.Sampler"

	// GetHistory ranges are capped at one year.
	maxHistorySeconds = 86400 * 366
)

const introspectXML = `
<node>
  <interface name="` + ifaceName + `">
    <method name="TriggerSample">
      <arg direction="in" type="s" name="cause"/>
    </method>
    <method name="GetLatestSample">
      <arg direction="out" type="s" name="json"/>
    </method>
    <method name="GetHistory">
      <arg direction="in" type="x" name="from_epoch"/>
      <arg direction="in" type="x" name="to_epoch"/>
      <arg direction="out" type="s" name="json"/>
    </method>
  </interface>
` + introspect.IntrospectDataString + `
</node>`

// Service exposes the sampler over D-Bus: user-action triggers in, assembled
// samples out.
type Service struct {
	store  *storage.DB
	submit func(sampler.Trigger)
	latest func() *sampler.Sample
}

// NewService creates a new D-Bus service. submit forwards a user-action
// trigger to the sample worker; latest returns the most recent in-memory
// sample (the store is the fallback when none has been assembled yet).
func NewService(store *storage.DB, submit func(sampler.Trigger), latest func() *sampler.Sample) *Service {
	return &Service{store: store, submit: submit, latest: latest}
}

// Export registers the service on the session bus.
func (s *Service) Export() (*godbus.Conn, error) {
	conn, err := godbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	conn.Export(s, objPath, ifaceName)
	conn.Export(introspect.Introspectable(introspectXML), objPath, "org.freedesktop.DBus.Introspectable")

	reply, err := conn.RequestName(busName, godbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name: %w", err)
	}
	if reply != godbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("name %s already taken", busName)
	}

	return conn, nil
}

// TriggerSample queues one sample assembly attributed to a user action.
// cause must be empty or "user-action"; other causes are reserved for the
// daemon's own trigger sources.
func (s *Service) TriggerSample(cause string) *godbus.Error {
	if cause != "" && cause != string(sampler.TriggerUserAction) {
		return godbus.MakeFailedError(fmt.Errorf("unsupported cause %q", cause))
	}
	s.submit(sampler.TriggerUserAction)
	return nil
}

// GetLatestSample returns the most recent sample as json.
func (s *Service) GetLatestSample() (string, *godbus.Error) {
	smp := s.latest()
	if smp == nil {
		var err error
		smp, err = s.store.LatestSample()
		if err != nil {
			return "", godbus.MakeFailedError(err)
		}
	}
	if smp == nil {
		return "", godbus.MakeFailedError(fmt.Errorf("no sample assembled yet"))
	}

	data, err := json.Marshal(smp)
	if err != nil {
		return "", godbus.MakeFailedError(err)
	}
	return string(data), nil
}

// GetHistory returns samples within [from, to] as a json array.
func (s *Service) GetHistory(from, to int64) (string, *godbus.Error) {
	if err := validateRange(from, to); err != nil {
		return "", godbus.MakeFailedError(err)
	}

	samples, err := s.store.SamplesInRange(from, to)
	if err != nil {
		return "", godbus.MakeFailedError(err)
	}
	if samples == nil {
		samples = []*sampler.Sample{}
	}

	data, err := json.Marshal(samples)
	if err != nil {
		return "", godbus.MakeFailedError(err)
	}
	return string(data), nil
}

func validateRange(from, to int64) error {
	if from < 0 || to < 0 {
		return fmt.Errorf("epoch must not be negative")
	}
	if to < from {
		return fmt.Errorf("to %d is before from %d", to, from)
	}
	if to-from > maxHistorySeconds {
		return fmt.Errorf("range exceeds %d seconds", maxHistorySeconds)
	}
	return nil
}
