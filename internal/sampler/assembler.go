package sampler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/engMANP/carat/internal/calllog"
	"github.com/engMANP/carat/internal/collector"
	"github.com/engMANP/carat/internal/registry"
)

// Readers bundles the one-shot platform accessors the assembler pulls from.
// Each is independent: a failing or nil reader degrades its field to a
// zero/unknown value, never the whole sample.
type Readers struct {
	Memory    func() (*collector.MemoryReading, error)
	Uptime    func() (float64, error)
	Battery   func() (*collector.BatteryReading, error)
	Network   func() (*collector.NetworkReading, error)
	Wifi      func() (*collector.WifiReading, error)
	Screen    func() (int, error)
	Location  func() (*collector.LocationReading, error)
	Processes func() ([]collector.ProcessReading, error)
}

// PlatformReaders returns Readers backed by the live collectors.
func PlatformReaders() Readers {
	return Readers{
		Memory:    collector.CollectMemory,
		Uptime:    collector.UptimeSeconds,
		Battery:   collector.CollectBattery,
		Network:   collector.CollectNetwork,
		Wifi:      collector.CollectWifi,
		Screen:    collector.CollectScreenBrightness,
		Location:  collector.CollectLocation,
		Processes: collector.CollectProcesses,
	}
}

// Assembler builds samples. It holds no mutable state of its own; the
// previous sample is an explicit argument so fallback behavior is testable
// in isolation.
type Assembler struct {
	readers  Readers
	counters collector.CounterSource
	calls    calllog.Source
	registry *registry.Registry
	window   time.Duration
	log      *slog.Logger
}

// New creates an Assembler. counters, calls and reg may be nil; the
// corresponding fields then stay at their defaults.
func New(readers Readers, counters collector.CounterSource, calls calllog.Source, reg *registry.Registry, window time.Duration, logger *slog.Logger) *Assembler {
	return &Assembler{
		readers:  readers,
		counters: counters,
		calls:    calls,
		registry: reg,
		window:   window,
		log:      logger,
	}
}

// Known kernel battery status strings. Anything else is treated as an
// unrecognized code and falls back to the previous sample's state.
var knownBatteryStates = map[string]bool{
	"Charging":     true,
	"Discharging":  true,
	"Full":         true,
	"Not charging": true,
	"Unknown":      true,
}

// Assemble builds one sample for the given trigger. prev is the previously
// emitted sample, used only as a read-only fallback source; it is never
// mutated. Every individual reading that fails degrades that field and is
// logged, so Assemble always returns a sample.
func (a *Assembler) Assemble(ctx context.Context, trigger Trigger, prev *Sample) *Sample {
	s := &Sample{
		Timestamp:         time.Now(),
		UUID:              uuid.NewString(),
		TriggeredBy:       string(trigger),
		LocationProviders: []string{},
		CallMonths:        map[string]calllog.MonthBucket{},
	}

	if a.readers.Memory != nil {
		if m, err := a.readers.Memory(); err == nil {
			s.Memory = *m
		} else {
			a.log.Debug("memory read failed", "err", err)
		}
	}
	if a.readers.Uptime != nil {
		if up, err := a.readers.Uptime(); err == nil {
			s.UptimeSeconds = up
		} else {
			a.log.Debug("uptime read failed", "err", err)
		}
	}
	if a.readers.Network != nil {
		if n, err := a.readers.Network(); err == nil {
			s.Network = *n
		} else {
			a.log.Debug("network read failed", "err", err)
		}
	}
	if a.readers.Wifi != nil {
		if w, err := a.readers.Wifi(); err == nil {
			s.Wifi = *w
		} else {
			a.log.Debug("wifi read failed", "err", err)
		}
	}
	if a.readers.Screen != nil {
		if b, err := a.readers.Screen(); err == nil {
			s.ScreenBrightness = b
		} else {
			a.log.Debug("screen read failed", "err", err)
		}
	}
	if a.readers.Location != nil {
		if l, err := a.readers.Location(); err == nil {
			s.GPSEnabled = l.GPSEnabled
			s.LocationProviders = l.Providers
		} else {
			a.log.Debug("location read failed", "err", err)
		}
	}

	a.assembleCPU(ctx, s)
	a.assembleBattery(s, prev)
	a.assembleCalls(ctx, s)
	a.assembleProcesses(s)

	return s
}

func (a *Assembler) assembleCPU(ctx context.Context, s *Sample) {
	if a.counters == nil {
		return
	}
	if r, err := a.counters.Read(); err == nil {
		s.CPU.BusyTicks = r.BusyTicks
		s.CPU.IdleTicks = r.IdleTicks
	} else {
		a.log.Debug("counter read failed", "err", err)
	}

	f := collector.SampleUsage(ctx, a.counters, a.window)
	s.CPU.Usage = f.Value
	s.CPU.UsageValid = f.Valid
	if !f.Valid {
		a.log.Debug("cpu usage unavailable this cycle")
	}
}

// assembleBattery applies the carry-forward policy: the level is recomputed
// only when both raw counters are positive (the firmware reports -1/0
// sentinels when it has no data), the state only when the status code is
// recognized. Otherwise the previous sample's values are reused, or the
// documented defaults when there is no previous sample.
func (a *Assembler) assembleBattery(s *Sample, prev *Sample) {
	var r *collector.BatteryReading
	if a.readers.Battery != nil {
		var err error
		r, err = a.readers.Battery()
		if err != nil {
			a.log.Debug("battery read failed", "err", err)
			r = nil
		}
	}

	level := 0.0
	if prev != nil {
		level = prev.Battery.Level
	}
	if r != nil && r.RawLevel > 0 && r.RawScale > 0 {
		level = float64(r.RawLevel) / float64(r.RawScale)
		if level > 1 {
			level = 1
		}
	}
	s.Battery.Level = level

	state := ""
	if r != nil && knownBatteryStates[r.Status] {
		state = r.Status
	}
	if state == "" {
		if prev != nil {
			state = prev.Battery.State
		} else {
			state = "Unknown"
		}
	}
	s.Battery.State = state

	s.Battery.Health = "Unknown"
	s.Battery.Charger = "unplugged"
	if r != nil {
		if r.Health != "" {
			s.Battery.Health = r.Health
		}
		if r.Charger != "" {
			s.Battery.Charger = r.Charger
		}
		s.Battery.TemperatureC = r.TemperatureC
		s.Battery.Voltage = r.Voltage
	}
}

func (a *Assembler) assembleCalls(ctx context.Context, s *Sample) {
	if a.calls == nil {
		return
	}
	events, err := a.calls.Query(ctx)
	if err != nil {
		a.log.Debug("call log query failed", "err", err)
		return
	}
	s.CallMonths = calllog.Aggregate(events)

	bootTime := s.Timestamp.Add(-time.Duration(s.UptimeSeconds * float64(time.Second)))
	s.CallsSinceBoot = calllog.DurationsSince(events, bootTime)
}

// assembleProcesses matches each running process against the installed
// application registry by process name; unmatched processes keep only
// pid/name/importance.
func (a *Assembler) assembleProcesses(s *Sample) {
	if a.readers.Processes == nil {
		return
	}
	procs, err := a.readers.Processes()
	if err != nil {
		a.log.Debug("process read failed", "err", err)
		return
	}

	s.Processes = make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		info := ProcessInfo{
			PID:        p.PID,
			Name:       p.Name,
			Importance: p.Importance,
		}
		if a.registry != nil {
			if app, ok := a.registry.Lookup(p.Name); ok {
				info.ApplicationLabel = app.Label
				info.IsSystemApp = app.System
			}
		}
		s.Processes = append(s.Processes, info)
	}
}
