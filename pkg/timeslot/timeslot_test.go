package timeslot

import (
	"reflect"
	"testing"
)

func TestMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := Minutes(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Minutes(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Minutes(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Minutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, hhmm := range []string{"00:00", "06:05", "12:30", "23:59"} {
		m, err := Minutes(hhmm)
		if err != nil {
			t.Fatalf("Minutes(%q): %v", hhmm, err)
		}
		if got := Format(m); got != hhmm {
			t.Errorf("Format(Minutes(%q)) = %q", hhmm, got)
		}
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"partial overlap", "10:00", "11:00", "10:30", "11:30", true},
		{"contained", "10:00", "12:00", "10:30", "11:00", true},
		{"back to back", "10:00", "11:00", "11:00", "12:00", false},
		{"back to back reversed", "11:00", "12:00", "10:00", "11:00", false},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
		{"touching start", "09:00", "10:00", "08:00", "09:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps(%s-%s, %s-%s) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
			// the test is symmetric in its two intervals
			if got := Overlaps(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %s-%s vs %s-%s", tt.s1, tt.e1, tt.s2, tt.e2)
			}
		})
	}
}

func TestPoints(t *testing.T) {
	got, err := Points("09:00", "10:00", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"09:00", "09:30", "10:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Points(09:00, 10:00, 30) = %v, want %v", got, want)
	}
}

func TestPointsUnevenEnd(t *testing.T) {
	got, err := Points("09:00", "09:45", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 09:45 is not aligned to the grid, so the last emitted point is 09:30
	want := []string{"09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Points(09:00, 09:45, 30) = %v, want %v", got, want)
	}
}

func TestPointsDefaultsGranularity(t *testing.T) {
	got, err := Points("10:00", "11:00", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("zero granularity should fall back to %d minutes, got %v", DefaultGranularityMin, got)
	}
}

func TestValidDate(t *testing.T) {
	valid := []string{"2026-08-31", "2025-01-01"}
	invalid := []string{"2026-13-01", "2026-8-31", "31-08-2026", "", "2026-02-30"}

	for _, d := range valid {
		if !ValidDate(d) {
			t.Errorf("ValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if ValidDate(d) {
			t.Errorf("ValidDate(%q) = true, want false", d)
		}
	}
}
