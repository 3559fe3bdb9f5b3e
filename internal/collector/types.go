package collector

import "time"

// Roots for sysfs and procfs reads. Overridden in tests.
var (
	sysfsRoot = "/sys"
	procRoot  = "/proc"
)

// CounterReading is one read of the cumulative CPU tick counters.
// BusyTicks sums the user, nice, system, iowait, irq and softirq categories;
// IdleTicks is the idle category. TakenAt carries a monotonic clock reading.
type CounterReading struct {
	BusyTicks int64
	IdleTicks int64
	TakenAt   time.Time
}

// MemoryReading holds a snapshot of system memory, in kilobytes.
type MemoryReading struct {
	UsedKB     uint64 `json:"used_kb"`
	FreeKB     uint64 `json:"free_kb"`
	ActiveKB   uint64 `json:"active_kb"`
	InactiveKB uint64 `json:"inactive_kb"`
}

// BatteryReading holds raw battery state from /sys/class/power_supply/BAT*.
// RawLevel and RawScale are the charge_now/charge_full counters; they are -1
// when the firmware does not report them, so consumers must validate before
// dividing.
type BatteryReading struct {
	RawLevel     int64
	RawScale     int64
	Status       string // kernel status string, e.g. "Charging"
	Health       string
	TemperatureC float64
	Voltage      float64
	Charger      string // "ac", "usb", or "unplugged"
}

// NetworkReading holds a snapshot of the active network connection.
type NetworkReading struct {
	Status       string `json:"status"` // "connected" or "disconnected"
	Type         string `json:"type"`   // "wifi", "ethernet", "mobile", or "unknown"
	MobileType   string `json:"mobile_type"`
	Roaming      bool   `json:"roaming"`
	DataState    string `json:"data_state"`
	DataActivity string `json:"data_activity"`
}

// WifiReading holds a snapshot of wireless interface state.
type WifiReading struct {
	Enabled        bool   `json:"enabled"`
	State          string `json:"state"` // interface operstate, e.g. "up"
	SignalStrength int    `json:"signal_strength"`
	LinkSpeedMbps  int    `json:"link_speed_mbps"`
}

// LocationReading reports positioning availability.
type LocationReading struct {
	GPSEnabled bool     `json:"gps_enabled"`
	Providers  []string `json:"providers"`
}

// ProcessReading is one running process as seen in /proc.
type ProcessReading struct {
	PID        int    `json:"pid"`
	Name       string `json:"name"`
	Importance string `json:"importance"`
}
