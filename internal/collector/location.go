package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CollectLocation reports positioning availability from rfkill. A device of
// type gps or gnss that is unblocked counts as an enabled provider; no such
// device at all is a valid reading with GPS off, not an error.
func CollectLocation() (*LocationReading, error) {
	matches, err := filepath.Glob(filepath.Join(sysfsRoot, "class/rfkill/rfkill*"))
	if err != nil {
		return nil, fmt.Errorf("glob rfkill: %w", err)
	}

	r := &LocationReading{Providers: []string{}}
	for _, dir := range matches {
		t, err := os.ReadFile(filepath.Join(dir, "type"))
		if err != nil {
			continue
		}
		typ := strings.TrimSpace(string(t))
		if typ != "gps" && typ != "gnss" {
			continue
		}
		soft, _ := readIntFile(filepath.Join(dir, "soft"))
		hard, _ := readIntFile(filepath.Join(dir, "hard"))
		if soft != 0 || hard != 0 {
			continue
		}
		name := filepath.Base(dir)
		if n, err := os.ReadFile(filepath.Join(dir, "name")); err == nil {
			name = strings.TrimSpace(string(n))
		}
		r.GPSEnabled = true
		r.Providers = append(r.Providers, name)
	}

	sort.Strings(r.Providers)
	return r, nil
}
