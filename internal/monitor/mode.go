package monitor

import (
	"fmt"
	"strings"
	"time"
)

// Zone is the fixed UTC+1 wall clock used for digest windows and report times.
var Zone = time.FixedZone("UTC+1", 60*60)

// Mode selects how a run treats evaluations.
type Mode string

const (
	// ModeNormal notifies only when the signal identity changes.
	ModeNormal Mode = "normal"
	// ModeDigest sends a status report for every instrument.
	ModeDigest Mode = "digest"
	// ModeAuto resolves to digest inside the digest window and normal otherwise.
	ModeAuto Mode = "auto"
)

// ParseMode validates a mode name; "daily" is accepted as an alias of digest.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeNormal, "":
		return ModeNormal, nil
	case ModeDigest, "daily":
		return ModeDigest, nil
	case ModeAuto:
		return ModeAuto, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// DigestPolicy decides whether digest runs are gated per day.
type DigestPolicy string

const (
	// PolicyAlways sends a digest on every digest run.
	PolicyAlways DigestPolicy = "always"
	// PolicyOncePerDay sends at most one digest per instrument per UTC+1 day.
	PolicyOncePerDay DigestPolicy = "once_per_day"
)

// ParseDigestPolicy validates a configured digest policy, defaulting to always.
func ParseDigestPolicy(s string) (DigestPolicy, error) {
	switch DigestPolicy(strings.ToLower(s)) {
	case PolicyAlways, "":
		return PolicyAlways, nil
	case PolicyOncePerDay:
		return PolicyOncePerDay, nil
	}
	return "", fmt.Errorf("unknown digest policy %q", s)
}

// DigestWindow is the daily UTC+1 interval in which auto mode runs a digest.
type DigestWindow struct {
	Hour   int
	Minute int
	Length time.Duration
}

// DefaultDigestWindow is 01:00 to 01:20 UTC+1.
func DefaultDigestWindow() DigestWindow {
	return DigestWindow{Hour: 1, Minute: 0, Length: 20 * time.Minute}
}

// Contains reports whether now falls in [start, start+Length) for the window that
// opened on now's UTC+1 day or the day before, so windows may cross midnight.
func (w DigestWindow) Contains(now time.Time) bool {
	local := now.In(Zone)
	start := time.Date(local.Year(), local.Month(), local.Day(), w.Hour, w.Minute, 0, 0, Zone)
	if local.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return !local.Before(start) && local.Before(start.Add(w.Length))
}

// ResolveMode turns ModeAuto into a concrete mode for the given instant.
func ResolveMode(m Mode, now time.Time, w DigestWindow) Mode {
	if m != ModeAuto {
		return m
	}
	if w.Contains(now) {
		return ModeDigest
	}
	return ModeNormal
}

// DigestDate is the UTC+1 calendar day used as the digest sentinel value.
func DigestDate(now time.Time) string {
	return now.In(Zone).Format("2006-01-02")
}
