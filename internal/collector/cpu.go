package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CounterSource yields cumulative CPU tick counters as of now.
type CounterSource interface {
	Read() (CounterReading, error)
}

// StatSource reads the aggregate cpu line of /proc/stat.
type StatSource struct{}

// Read parses the first line of /proc/stat into a CounterReading.
func (StatSource) Read() (CounterReading, error) {
	data, err := os.ReadFile(filepath.Join(procRoot, "stat"))
	if err != nil {
		return CounterReading{}, fmt.Errorf("read stat: %w", err)
	}

	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 8 || fields[0] != "cpu" {
		return CounterReading{}, fmt.Errorf("malformed cpu line %q", line)
	}

	var ticks [7]int64
	for i := range ticks {
		ticks[i], err = strconv.ParseInt(fields[i+1], 10, 64)
		if err != nil {
			return CounterReading{}, fmt.Errorf("parse cpu field %d: %w", i+1, err)
		}
		if ticks[i] < 0 {
			ticks[i] = 0
		}
	}

	// Field order: user nice system idle iowait irq softirq.
	return CounterReading{
		BusyTicks: ticks[0] + ticks[1] + ticks[2] + ticks[4] + ticks[5] + ticks[6],
		IdleTicks: ticks[3],
		TakenAt:   time.Now(),
	}, nil
}
