package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CollectBattery reads battery info from /sys/class/power_supply/BAT*.
// RawLevel/RawScale come from the charge counters (falling back to the
// energy counters) and stay at -1 when the firmware reports neither.
func CollectBattery() (*BatteryReading, error) {
	matches, err := filepath.Glob(filepath.Join(sysfsRoot, "class/power_supply/BAT*"))
	if err != nil {
		return nil, fmt.Errorf("glob battery: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no battery found")
	}

	data, err := os.ReadFile(filepath.Join(matches[0], "uevent"))
	if err != nil {
		return nil, fmt.Errorf("read uevent: %w", err)
	}

	props := parseUevent(string(data))
	r := &BatteryReading{
		RawLevel: -1,
		RawScale: -1,
		Status:   props["POWER_SUPPLY_STATUS"],
		Health:   props["POWER_SUPPLY_HEALTH"],
		Charger:  chargerType(),
	}

	if v, err := strconv.ParseInt(props["POWER_SUPPLY_CHARGE_NOW"], 10, 64); err == nil {
		r.RawLevel = v
	}
	if v, err := strconv.ParseInt(props["POWER_SUPPLY_CHARGE_FULL"], 10, 64); err == nil {
		r.RawScale = v
	}
	if r.RawLevel < 0 || r.RawScale < 0 {
		if v, err := strconv.ParseInt(props["POWER_SUPPLY_ENERGY_NOW"], 10, 64); err == nil {
			r.RawLevel = v
		}
		if v, err := strconv.ParseInt(props["POWER_SUPPLY_ENERGY_FULL"], 10, 64); err == nil {
			r.RawScale = v
		}
	}

	// TEMP is tenths of a degree, VOLTAGE_NOW is microvolts.
	if v, err := strconv.ParseInt(props["POWER_SUPPLY_TEMP"], 10, 64); err == nil {
		r.TemperatureC = float64(v) / 10
	}
	if v, err := strconv.ParseInt(props["POWER_SUPPLY_VOLTAGE_NOW"], 10, 64); err == nil {
		r.Voltage = float64(v) / 1e6
	}

	return r, nil
}

// chargerType reports which kind of supply is online, preferring mains.
func chargerType() string {
	matches, err := filepath.Glob(filepath.Join(sysfsRoot, "class/power_supply/*"))
	if err != nil {
		return "unplugged"
	}

	charger := "unplugged"
	for _, dir := range matches {
		online, err := readIntFile(filepath.Join(dir, "online"))
		if err != nil || online != 1 {
			continue
		}
		typ, err := os.ReadFile(filepath.Join(dir, "type"))
		if err != nil {
			continue
		}
		switch strings.TrimSpace(string(typ)) {
		case "Mains":
			return "ac"
		case "USB":
			charger = "usb"
		}
	}
	return charger
}

func parseUevent(data string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			props[k] = v
		}
	}
	return props
}

func readIntFile(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}
