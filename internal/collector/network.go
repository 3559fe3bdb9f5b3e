package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CollectNetwork inspects /sys/class/net and reports the state of the active
// connection. Interface classes map onto the sample's network types: a
// wireless interface is "wifi", a wwan interface is "mobile", anything else
// that is up counts as "ethernet".
func CollectNetwork() (*NetworkReading, error) {
	ifaces, err := netInterfaces()
	if err != nil {
		return nil, err
	}

	r := &NetworkReading{
		Status:       "disconnected",
		Type:         "unknown",
		MobileType:   "unknown",
		DataState:    "disconnected",
		DataActivity: "none",
	}

	for _, name := range ifaces {
		if name == "lo" || !ifaceUp(name) {
			continue
		}
		r.Status = "connected"
		switch {
		case isWireless(name):
			r.Type = "wifi"
		case strings.HasPrefix(name, "wwan"):
			r.Type = "mobile"
			r.DataState = "connected"
		default:
			r.Type = "ethernet"
		}
		return r, nil
	}
	return r, nil
}

// CollectWifi reads wireless interface state: rfkill for the enabled flag,
// operstate for the link state, /proc/net/wireless for signal level and the
// interface speed file for link rate. Missing values degrade to -1.
func CollectWifi() (*WifiReading, error) {
	r := &WifiReading{
		State:          "disabled",
		SignalStrength: -1,
		LinkSpeedMbps:  -1,
	}
	r.Enabled = rfkillUnblocked("wlan")

	ifaces, err := netInterfaces()
	if err != nil {
		return nil, err
	}

	for _, name := range ifaces {
		if !isWireless(name) {
			continue
		}
		if state, err := os.ReadFile(filepath.Join(sysfsRoot, "class/net", name, "operstate")); err == nil {
			r.State = strings.TrimSpace(string(state))
		}
		if level, err := wirelessLevel(name); err == nil {
			r.SignalStrength = level
		}
		if speed, err := readIntFile(filepath.Join(sysfsRoot, "class/net", name, "speed")); err == nil && speed > 0 {
			r.LinkSpeedMbps = int(speed)
		}
		return r, nil
	}
	return r, nil
}

func netInterfaces() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(sysfsRoot, "class/net"))
	if err != nil {
		return nil, fmt.Errorf("read net class: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func ifaceUp(name string) bool {
	data, err := os.ReadFile(filepath.Join(sysfsRoot, "class/net", name, "operstate"))
	return err == nil && strings.TrimSpace(string(data)) == "up"
}

func isWireless(name string) bool {
	_, err := os.Stat(filepath.Join(sysfsRoot, "class/net", name, "wireless"))
	return err == nil
}

// wirelessLevel parses the signal level column of /proc/net/wireless for the
// given interface, in dBm.
func wirelessLevel(name string) (int, error) {
	data, err := os.ReadFile(filepath.Join(procRoot, "net/wireless"))
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || !strings.HasPrefix(fields[0], name+":") {
			continue
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[3], "."), 64)
		if err != nil {
			return 0, fmt.Errorf("parse level for %s: %w", name, err)
		}
		return int(level), nil
	}
	return 0, fmt.Errorf("interface %s not in wireless stats", name)
}

// rfkillUnblocked reports whether any rfkill device of the given type exists
// and is neither soft- nor hard-blocked.
func rfkillUnblocked(typ string) bool {
	matches, err := filepath.Glob(filepath.Join(sysfsRoot, "class/rfkill/rfkill*"))
	if err != nil {
		return false
	}
	for _, dir := range matches {
		t, err := os.ReadFile(filepath.Join(dir, "type"))
		if err != nil || strings.TrimSpace(string(t)) != typ {
			continue
		}
		soft, _ := readIntFile(filepath.Join(dir, "soft"))
		hard, _ := readIntFile(filepath.Join(dir, "hard"))
		if soft == 0 && hard == 0 {
			return true
		}
	}
	return false
}
