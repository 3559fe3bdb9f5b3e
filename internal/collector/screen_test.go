package collector

import (
	"path/filepath"
	"testing"
)

func TestCollectScreenBrightness_Scaled(t *testing.T) {
	root := setTestSysfsRoot(t)
	writeTestFile(t, filepath.Join(root, "class/backlight/intel_backlight/brightness"), "480\n")
	writeTestFile(t, filepath.Join(root, "class/backlight/intel_backlight/max_brightness"), "960\n")

	b, err := CollectScreenBrightness()
	if err != nil {
		t.Fatalf("CollectScreenBrightness() error = %v", err)
	}
	if b != 127 {
		t.Fatalf("brightness = %d, want 127", b)
	}
}

func TestCollectScreenBrightness_ClampsOverMax(t *testing.T) {
	root := setTestSysfsRoot(t)
	writeTestFile(t, filepath.Join(root, "class/backlight/bl/brightness"), "2000\n")
	writeTestFile(t, filepath.Join(root, "class/backlight/bl/max_brightness"), "1000\n")

	b, err := CollectScreenBrightness()
	if err != nil {
		t.Fatalf("CollectScreenBrightness() error = %v", err)
	}
	if b != 255 {
		t.Fatalf("brightness = %d, want 255", b)
	}
}

func TestCollectScreenBrightness_InvalidMax(t *testing.T) {
	root := setTestSysfsRoot(t)
	writeTestFile(t, filepath.Join(root, "class/backlight/bl/brightness"), "10\n")
	writeTestFile(t, filepath.Join(root, "class/backlight/bl/max_brightness"), "0\n")

	if _, err := CollectScreenBrightness(); err == nil {
		t.Fatal("CollectScreenBrightness() expected error for zero max")
	}
}

func TestCollectScreenBrightness_NoBacklight(t *testing.T) {
	setTestSysfsRoot(t)

	if _, err := CollectScreenBrightness(); err == nil {
		t.Fatal("CollectScreenBrightness() expected error for missing backlight")
	}
}
