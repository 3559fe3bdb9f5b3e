package collector

import (
	"path/filepath"
	"testing"
)

func TestCollectProcesses(t *testing.T) {
	root := setTestProcRoot(t)
	writeTestFile(t, filepath.Join(root, "42/comm"), "systemd\n")
	writeTestFile(t, filepath.Join(root, "42/oom_score_adj"), "-1000\n")
	writeTestFile(t, filepath.Join(root, "7/comm"), "firefox\n")
	writeTestFile(t, filepath.Join(root, "7/oom_score_adj"), "-200\n")
	writeTestFile(t, filepath.Join(root, "100/comm"), "tracker-miner\n")
	writeTestFile(t, filepath.Join(root, "100/oom_score_adj"), "200\n")
	writeTestFile(t, filepath.Join(root, "101/comm"), "sshd\n")
	writeTestFile(t, filepath.Join(root, "101/oom_score_adj"), "0\n")
	// Non-pid entries must be skipped.
	writeTestFile(t, filepath.Join(root, "sys/kernel"), "")
	writeTestFile(t, filepath.Join(root, "meminfo"), "MemTotal: 1 kB\n")

	procs, err := CollectProcesses()
	if err != nil {
		t.Fatalf("CollectProcesses() error = %v", err)
	}
	if len(procs) != 4 {
		t.Fatalf("len(procs) = %d, want 4", len(procs))
	}

	// Ordered by pid.
	want := []ProcessReading{
		{PID: 7, Name: "firefox", Importance: ImportanceForeground},
		{PID: 42, Name: "systemd", Importance: ImportanceSystem},
		{PID: 100, Name: "tracker-miner", Importance: ImportanceBackground},
		{PID: 101, Name: "sshd", Importance: ImportanceService},
	}
	for i, w := range want {
		if procs[i] != w {
			t.Fatalf("procs[%d] = %+v, want %+v", i, procs[i], w)
		}
	}
}

func TestCollectProcesses_SkipsVanished(t *testing.T) {
	root := setTestProcRoot(t)
	// Pid dir without a comm file: process exited mid-walk.
	writeTestFile(t, filepath.Join(root, "5/oom_score_adj"), "0\n")
	writeTestFile(t, filepath.Join(root, "6/comm"), "bash\n")
	writeTestFile(t, filepath.Join(root, "6/oom_score_adj"), "0\n")

	procs, err := CollectProcesses()
	if err != nil {
		t.Fatalf("CollectProcesses() error = %v", err)
	}
	if len(procs) != 1 || procs[0].Name != "bash" {
		t.Fatalf("procs = %+v, want just bash", procs)
	}
}

func TestImportanceLabel(t *testing.T) {
	tests := []struct {
		adj  int64
		want string
	}{
		{-1000, ImportanceSystem},
		{-900, ImportanceSystem},
		{-899, ImportanceForeground},
		{-1, ImportanceForeground},
		{0, ImportanceService},
		{1, ImportanceBackground},
		{1000, ImportanceBackground},
	}
	for _, tt := range tests {
		if got := importanceLabel(tt.adj); got != tt.want {
			t.Fatalf("importanceLabel(%d) = %q, want %q", tt.adj, got, tt.want)
		}
	}
}
