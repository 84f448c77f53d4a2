package ingest

import "testing"

func TestDailyShape(t *testing.T) {
	cases := []struct {
		hour int
		want float64
	}{
		{0, 0.7},
		{5, 0.7},
		{6, 1.1},
		{7, 1.3},
		{9, 1.3},
		{10, 1.1},
		{17, 1.1},
		{18, 1.4},
		{21, 1.4},
		{22, 1.1},
		{23, 0.7},
	}
	for _, tc := range cases {
		if got := dailyShape(tc.hour); got != tc.want {
			t.Errorf("dailyShape(%d) = %v, want %v", tc.hour, got, tc.want)
		}
	}
}
