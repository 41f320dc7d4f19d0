package config

import "testing"

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("heavy_drag")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Environment.Drag != [3]float64{1, 1, 2} {
		t.Errorf("unexpected drag %v", cfg.Environment.Drag)
	}

	cfg.Environment.Drag[0] = 99
	if GetPreset("heavy_drag").Environment.Drag[0] != 1 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"coast", "default", "heavy_drag", "still"}
	got := ListPresets()
	if len(got) != len(want) {
		t.Fatalf("ListPresets() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListPresets()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}
