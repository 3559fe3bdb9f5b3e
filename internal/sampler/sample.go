// Package sampler assembles one-shot platform readings, the windowed CPU
// usage fraction and the aggregated call history into immutable samples.
package sampler

import (
	"time"

	"github.com/engMANP/carat/internal/calllog"
	"github.com/engMANP/carat/internal/collector"
)

// Trigger identifies what initiated a sample assembly.
type Trigger string

const (
	TriggerBatteryChange Trigger = "battery-change"
	TriggerTimer         Trigger = "timer"
	TriggerUserAction    Trigger = "user-action"
)

// CPUStats holds the raw cumulative counters and the windowed usage fraction.
type CPUStats struct {
	BusyTicks  int64   `json:"busy_ticks"`
	IdleTicks  int64   `json:"idle_ticks"`
	Usage      float64 `json:"usage"`
	UsageValid bool    `json:"usage_valid"`
}

// BatteryStats holds derived battery state. Level is a fraction in [0,1].
type BatteryStats struct {
	Level        float64 `json:"level"`
	Health       string  `json:"health"`
	State        string  `json:"state"`
	Charger      string  `json:"charger"`
	TemperatureC float64 `json:"temperature_c"`
	Voltage      float64 `json:"voltage"`
}

// ProcessInfo is one running process, optionally matched to an installed
// application.
type ProcessInfo struct {
	PID              int    `json:"pid"`
	Name             string `json:"name"`
	Importance       string `json:"importance"`
	ApplicationLabel string `json:"application_label,omitempty"`
	IsSystemApp      bool   `json:"is_system_app"`
}

// Sample is one assembled device snapshot. A sample is never mutated after
// construction; the previously emitted sample is only ever read as a
// fallback source for the next assembly.
type Sample struct {
	Timestamp         time.Time                      `json:"timestamp"`
	UUID              string                         `json:"uuid"`
	TriggeredBy       string                         `json:"triggered_by"`
	UptimeSeconds     float64                        `json:"uptime_seconds"`
	CPU               CPUStats                       `json:"cpu"`
	Memory            collector.MemoryReading        `json:"memory"`
	Battery           BatteryStats                   `json:"battery"`
	Network           collector.NetworkReading       `json:"network"`
	Wifi              collector.WifiReading          `json:"wifi"`
	ScreenBrightness  int                            `json:"screen_brightness"`
	GPSEnabled        bool                           `json:"gps_enabled"`
	LocationProviders []string                       `json:"location_providers"`
	CallMonths        map[string]calllog.MonthBucket `json:"call_months"`
	CallsSinceBoot    calllog.Totals                 `json:"calls_since_boot"`
	Processes         []ProcessInfo                  `json:"processes"`
}
