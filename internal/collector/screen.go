package collector

import (
	"fmt"
	"path/filepath"
)

// CollectScreenBrightness reads the backlight from /sys/class/backlight/*
// and scales it to 0-255.
func CollectScreenBrightness() (int, error) {
	matches, err := filepath.Glob(filepath.Join(sysfsRoot, "class/backlight/*"))
	if err != nil {
		return 0, fmt.Errorf("glob backlight: %w", err)
	}
	if len(matches) == 0 {
		return 0, fmt.Errorf("no backlight found")
	}

	dir := matches[0]
	brightness, err := readIntFile(filepath.Join(dir, "brightness"))
	if err != nil {
		return 0, fmt.Errorf("read brightness: %w", err)
	}
	maxBrightness, err := readIntFile(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return 0, fmt.Errorf("read max_brightness: %w", err)
	}
	if maxBrightness <= 0 {
		return 0, fmt.Errorf("invalid max_brightness %d", maxBrightness)
	}
	if brightness < 0 {
		brightness = 0
	}
	if brightness > maxBrightness {
		brightness = maxBrightness
	}

	return int(brightness * 255 / maxBrightness), nil
}
