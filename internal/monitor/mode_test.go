package monitor

import (
	"testing"
	"time"
)

func TestDigestWindow_Contains(t *testing.T) {
	w := DefaultDigestWindow()
	tests := []struct {
		name string
		utc  string
		want bool
	}{
		{"window start", "2026-10-18T00:00:00Z", true},
		{"inside", "2026-10-18T00:19:59Z", true},
		{"window end is exclusive", "2026-10-18T00:20:00Z", false},
		{"before", "2026-10-17T23:59:59Z", false},
		{"afternoon", "2026-10-18T13:05:00Z", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, tt.utc)
			if err != nil {
				t.Fatal(err)
			}
			if got := w.Contains(now); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.utc, got, tt.want)
			}
		})
	}
}

func TestDigestWindow_CrossesMidnight(t *testing.T) {
	w := DigestWindow{Hour: 23, Minute: 50, Length: 20 * time.Minute}
	tests := []struct {
		name  string
		local time.Time
		want  bool
	}{
		{"before start", time.Date(2026, 10, 17, 23, 49, 0, 0, Zone), false},
		{"start", time.Date(2026, 10, 17, 23, 50, 0, 0, Zone), true},
		{"after midnight", time.Date(2026, 10, 18, 0, 5, 0, 0, Zone), true},
		{"end is exclusive", time.Date(2026, 10, 18, 0, 10, 0, 0, Zone), false},
		{"midday", time.Date(2026, 10, 18, 12, 0, 0, 0, Zone), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.local); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.local, got, tt.want)
			}
		})
	}
	if got := ResolveMode(ModeAuto, time.Date(2026, 10, 18, 0, 5, 0, 0, Zone), w); got != ModeDigest {
		t.Errorf("auto just after midnight = %s, want digest", got)
	}
}

func TestResolveMode(t *testing.T) {
	in := time.Date(2026, 10, 18, 0, 5, 0, 0, time.UTC)
	out := time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC)
	w := DefaultDigestWindow()

	if got := ResolveMode(ModeAuto, in, w); got != ModeDigest {
		t.Errorf("auto inside window = %s", got)
	}
	if got := ResolveMode(ModeAuto, out, w); got != ModeNormal {
		t.Errorf("auto outside window = %s", got)
	}
	if got := ResolveMode(ModeDigest, out, w); got != ModeDigest {
		t.Errorf("explicit digest = %s", got)
	}
	if got := ResolveMode(ModeNormal, in, w); got != ModeNormal {
		t.Errorf("explicit normal = %s", got)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeNormal, "NORMAL": ModeNormal, "digest": ModeDigest, "daily": ModeDigest, "auto": ModeAuto} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseMode("weekly"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if _, err := ParseDigestPolicy("hourly"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestDigestDate_UsesUTCPlusOne(t *testing.T) {
	// 23:30 UTC is already the next day in UTC+1.
	if got := DigestDate(time.Date(2026, 10, 17, 23, 30, 0, 0, time.UTC)); got != "2026-10-18" {
		t.Errorf("DigestDate = %s", got)
	}
}
