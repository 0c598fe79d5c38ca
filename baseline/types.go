// Package baseline resolves the web-features dataset and answers Baseline
// queries over it.
//
// A Resolver publishes one immutable Snapshot at a time. Snapshots come from
// a tiered chain: the webstatus.dev API, then web-features data.json mirrors,
// then the last good fetch while it is younger than the cache TTL, then the
// dataset bundled into the binary. Every remote payload shape is normalized
// into WebFeature records before it reaches a Snapshot.
package baseline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Level is a feature's cross-browser availability.
type Level string

const (
	LevelHigh    Level = "high"    // widely available
	LevelLow     Level = "low"     // newly available
	LevelLimited Level = "limited" // serialized as false
)

// MarshalJSON writes limited availability as false, matching web-features.
func (l Level) MarshalJSON() ([]byte, error) {
	switch l {
	case LevelHigh, LevelLow:
		return json.Marshal(string(l))
	case LevelLimited:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*l = ""
	case bool:
		*l = LevelLimited
	case string:
		parsed, ok := parseLevel(v)
		if !ok {
			return fmt.Errorf("unknown baseline level %q", v)
		}
		*l = parsed
	default:
		return fmt.Errorf("unexpected baseline value %s", string(data))
	}
	return nil
}

// parseLevel accepts web-features ("high", "low") and webstatus.dev
// ("widely", "newly", "limited") spellings.
func parseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "widely":
		return LevelHigh, true
	case "low", "newly":
		return LevelLow, true
	case "limited", "false":
		return LevelLimited, true
	default:
		return "", false
	}
}

// Threshold selects which Baseline date a recency filter compares.
type Threshold string

const (
	ThresholdHigh Threshold = "high"
	ThresholdLow  Threshold = "low"
)

func ParseThreshold(s string) (Threshold, error) {
	switch Threshold(strings.ToLower(strings.TrimSpace(s))) {
	case ThresholdHigh:
		return ThresholdHigh, nil
	case ThresholdLow:
		return ThresholdLow, nil
	default:
		return "", fmt.Errorf("threshold must be \"high\" or \"low\", got %q", s)
	}
}

// Status is a feature's Baseline classification.
type Status struct {
	Baseline Level             `json:"baseline"`
	LowDate  string            `json:"baseline_low_date,omitempty"`
	HighDate string            `json:"baseline_high_date,omitempty"`
	Support  map[string]string `json:"support,omitempty"`
}

// DateFor returns the date matching threshold.
func (s *Status) DateFor(t Threshold) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	if t == ThresholdLow {
		return ParseDate(s.LowDate)
	}
	return ParseDate(s.HighDate)
}

// WebFeature is one web platform feature. ID is its identity.
type WebFeature struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Status      *Status  `json:"status,omitempty"`
	Spec        []string `json:"spec,omitempty"`
	Caniuse     []string `json:"caniuse,omitempty"`
	Group       []string `json:"group,omitempty"`
}

// Level returns the feature's Baseline level, or "" when unknown.
func (f WebFeature) Level() Level {
	if f.Status == nil {
		return ""
	}
	return f.Status.Baseline
}

// InGroup reports whether any of the feature's groups equals group.
func (f WebFeature) InGroup(group string) bool {
	for _, g := range f.Group {
		if g == group {
			return true
		}
	}
	return false
}

// clone returns a copy that shares nothing mutable with f.
func (f WebFeature) clone() WebFeature {
	out := f
	out.Spec = append([]string(nil), f.Spec...)
	out.Caniuse = append([]string(nil), f.Caniuse...)
	out.Group = append([]string(nil), f.Group...)
	if f.Status != nil {
		st := *f.Status
		if f.Status.Support != nil {
			st.Support = make(map[string]string, len(f.Status.Support))
			for k, v := range f.Status.Support {
				st.Support[k] = v
			}
		}
		out.Status = &st
	}
	return out
}

// ParseDate parses a Baseline date. web-features marks approximate dates
// with a leading "≤", which is ignored.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "≤"))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
