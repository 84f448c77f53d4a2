package pricing

// Time-of-use pricing slots. The three slots partition the 24-hour
// clock: PeakHours 17-21, ShoulderHours 07-17, OffPeakHours 21-07
// (wrapping midnight).
const (
	SlotPeak     = "PeakHours"
	SlotShoulder = "ShoulderHours"
	SlotOffPeak  = "OffPeakHours"
)

// Slot is a named pricing interval with its cost multiplier.
type Slot struct {
	Name       string
	Multiplier float64
}

// ClassifySlot maps a wall-clock hour to its pricing slot.
func ClassifySlot(hour int) Slot {
	switch {
	case hour >= 17 && hour < 21:
		return Slot{Name: SlotPeak, Multiplier: 1.5}
	case hour >= 7 && hour < 17:
		return Slot{Name: SlotShoulder, Multiplier: 1.2}
	default:
		return Slot{Name: SlotOffPeak, Multiplier: 1.0}
	}
}

var categoryNames = [4]string{"Night", "Morning", "Afternoon", "Evening"}

// ClassifyCategory maps an hour to the coarse usage-pattern category
// used by the forecast features. Its boundaries deliberately differ
// from the pricing slots; the two partitions serve different purposes
// and must not be merged.
func ClassifyCategory(hour int) (int, string) {
	var idx int
	switch {
	case hour < 6:
		idx = 0 // Night
	case hour < 12:
		idx = 1 // Morning
	case hour < 18:
		idx = 2 // Afternoon
	default:
		idx = 3 // Evening
	}
	return idx, categoryNames[idx]
}

// TransitionInfo returns the next slot boundary and a usage
// recommendation for the given slot. Display guidance only.
func TransitionInfo(slotName string) (nextTransition, recommendation string) {
	switch slotName {
	case SlotPeak:
		return "9 PM (Off-Peak begins)",
			"Avoid running high-power appliances. Delay usage until off-peak hours."
	case SlotShoulder:
		return "5 PM (Peak Hours begin)",
			"Complete heavy usage tasks before peak hours or wait until off-peak."
	default:
		return "7 AM (Shoulder Hours begin)",
			"Optimal time for running high-power appliances and charging batteries."
	}
}
