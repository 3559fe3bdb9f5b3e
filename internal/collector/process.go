package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Importance bands derived from oom_score_adj. The kernel protects important
// work by lowering its adjustment, so the bands order processes the same way
// a platform importance code would.
const (
	ImportanceSystem     = "system"
	ImportanceForeground = "foreground"
	ImportanceService    = "service"
	ImportanceBackground = "background"
)

// CollectProcesses walks /proc and returns one reading per running process,
// ordered by pid. Processes that vanish mid-walk are skipped.
func CollectProcesses() ([]ProcessReading, error) {
	entries, err := os.ReadDir(procRoot)
	if err != nil {
		return nil, fmt.Errorf("read proc: %w", err)
	}

	var procs []ProcessReading
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		comm, err := os.ReadFile(filepath.Join(procRoot, entry.Name(), "comm"))
		if err != nil {
			continue
		}
		adj, _ := readIntFile(filepath.Join(procRoot, entry.Name(), "oom_score_adj"))
		procs = append(procs, ProcessReading{
			PID:        pid,
			Name:       strings.TrimSpace(string(comm)),
			Importance: importanceLabel(adj),
		})
	}

	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	return procs, nil
}

func importanceLabel(adj int64) string {
	switch {
	case adj <= -900:
		return ImportanceSystem
	case adj < 0:
		return ImportanceForeground
	case adj == 0:
		return ImportanceService
	default:
		return ImportanceBackground
	}
}
