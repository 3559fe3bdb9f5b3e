// Package registry indexes installed applications from desktop entries so
// running processes can be matched to a human-readable label and a
// system/non-system classification.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// App is one installed application.
type App struct {
	Label  string // human-readable name from the desktop entry
	System bool   // installed in a system directory, or a user update of one
}

// Registry maps executable names to installed applications.
type Registry struct {
	apps map[string]App
}

// Load scans desktop entry directories. Entries found in systemDirs are
// system applications; an entry in userDirs that shares an executable with a
// system entry keeps the system classification (a user-updated system app is
// still a system app). Unreadable directories are skipped, not fatal: an
// empty registry just means no process gets a label.
func Load(systemDirs, userDirs []string) *Registry {
	r := &Registry{apps: make(map[string]App)}
	for _, dir := range systemDirs {
		r.scanDir(dir, true)
	}
	for _, dir := range userDirs {
		r.scanDir(dir, false)
	}
	return r
}

// Lookup finds the application whose executable matches the process name.
func (r *Registry) Lookup(processName string) (App, bool) {
	app, ok := r.apps[processName]
	return app, ok
}

// Len returns the number of indexed applications.
func (r *Registry) Len() int {
	return len(r.apps)
}

func (r *Registry) scanDir(dir string, system bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".desktop") {
			continue
		}
		exec, label, err := parseDesktopEntry(filepath.Join(dir, entry.Name()))
		if err != nil || exec == "" {
			continue
		}
		isSystem := system
		if prev, ok := r.apps[exec]; ok {
			// A user entry overriding a system one keeps the system flag.
			isSystem = isSystem || prev.System
		}
		r.apps[exec] = App{Label: label, System: isSystem}
	}
}

// parseDesktopEntry extracts the executable basename and display name from
// the [Desktop Entry] section.
func parseDesktopEntry(path string) (exec, label string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}

	inEntry := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}
		if v, ok := strings.CutPrefix(line, "Exec="); ok && exec == "" {
			exec = execName(v)
		}
		if v, ok := strings.CutPrefix(line, "Name="); ok && label == "" {
			label = v
		}
	}
	if exec == "" {
		return "", "", fmt.Errorf("no Exec in %s", path)
	}
	return exec, label, nil
}

// execName reduces an Exec= value to the executable basename, dropping
// arguments and %-field codes.
func execName(v string) string {
	fields := strings.Fields(v)
	for _, f := range fields {
		if strings.HasPrefix(f, "%") {
			continue
		}
		// env wrappers point at the real executable later in the line.
		if f == "env" || strings.Contains(f, "=") {
			continue
		}
		return filepath.Base(f)
	}
	return ""
}
