package pricing

import "testing"

func TestClassifySlot(t *testing.T) {
	tests := []struct {
		hour       int
		name       string
		multiplier float64
	}{
		{0, SlotOffPeak, 1.0},
		{6, SlotOffPeak, 1.0},
		{7, SlotShoulder, 1.2},
		{16, SlotShoulder, 1.2},
		{17, SlotPeak, 1.5},
		{20, SlotPeak, 1.5},
		{21, SlotOffPeak, 1.0},
		{23, SlotOffPeak, 1.0},
	}

	for _, tt := range tests {
		slot := ClassifySlot(tt.hour)
		if slot.Name != tt.name {
			t.Errorf("hour %d: got slot %s, want %s", tt.hour, slot.Name, tt.name)
		}
		if slot.Multiplier != tt.multiplier {
			t.Errorf("hour %d: got multiplier %v, want %v", tt.hour, slot.Multiplier, tt.multiplier)
		}
	}
}

func TestClassifySlotCoversAllHours(t *testing.T) {
	counts := map[string]int{}
	for hour := 0; hour < 24; hour++ {
		slot := ClassifySlot(hour)
		counts[slot.Name]++
	}
	if counts[SlotPeak] != 4 {
		t.Errorf("peak hours: got %d, want 4", counts[SlotPeak])
	}
	if counts[SlotShoulder] != 10 {
		t.Errorf("shoulder hours: got %d, want 10", counts[SlotShoulder])
	}
	if counts[SlotOffPeak] != 10 {
		t.Errorf("off-peak hours: got %d, want 10", counts[SlotOffPeak])
	}
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		hour int
		idx  int
		name string
	}{
		{0, 0, "Night"},
		{5, 0, "Night"},
		{6, 1, "Morning"},
		{11, 1, "Morning"},
		{12, 2, "Afternoon"},
		{17, 2, "Afternoon"},
		{18, 3, "Evening"},
		{23, 3, "Evening"},
	}

	for _, tt := range tests {
		idx, name := ClassifyCategory(tt.hour)
		if idx != tt.idx || name != tt.name {
			t.Errorf("hour %d: got (%d, %s), want (%d, %s)", tt.hour, idx, name, tt.idx, tt.name)
		}
	}
}

func TestTransitionInfoKnownSlots(t *testing.T) {
	next, rec := TransitionInfo(SlotPeak)
	if next != "9 PM (Off-Peak begins)" {
		t.Errorf("peak transition: got %q", next)
	}
	if rec == "" {
		t.Error("peak recommendation is empty")
	}

	next, _ = TransitionInfo(SlotShoulder)
	if next != "5 PM (Peak Hours begin)" {
		t.Errorf("shoulder transition: got %q", next)
	}

	// Unknown slots fall through to the off-peak guidance.
	next, _ = TransitionInfo("something-else")
	if next != "7 AM (Shoulder Hours begin)" {
		t.Errorf("fallback transition: got %q", next)
	}
}
