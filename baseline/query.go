package baseline

import (
	"sort"
	"strings"
	"time"
)

// Search matches query case-insensitively against id, name and
// description. Results keep payload order. The query is not trimmed, so an
// empty query matches every feature.
func (s *Snapshot) Search(query string) []WebFeature {
	q := strings.ToLower(query)

	var out []WebFeature
	s.each(func(f WebFeature) {
		if strings.Contains(strings.ToLower(f.ID), q) ||
			strings.Contains(strings.ToLower(f.Name), q) ||
			strings.Contains(strings.ToLower(f.Description), q) {
			out = append(out, f.clone())
		}
	})
	return out
}

// FilterByRecency returns features whose threshold date is strictly after
// since, newest first. Features without that date are excluded.
func (s *Snapshot) FilterByRecency(since time.Time, threshold Threshold) []WebFeature {
	type dated struct {
		f    WebFeature
		date time.Time
	}

	var matches []dated
	s.each(func(f WebFeature) {
		d, ok := f.Status.DateFor(threshold)
		if ok && d.After(since) {
			matches = append(matches, dated{f: f.clone(), date: d})
		}
	})

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].date.After(matches[j].date)
	})

	out := make([]WebFeature, len(matches))
	for i, m := range matches {
		out[i] = m.f
	}
	return out
}

// FilterByGroup returns features with group among their groups.
func (s *Snapshot) FilterByGroup(group string) []WebFeature {
	var out []WebFeature
	s.each(func(f WebFeature) {
		if f.InGroup(group) {
			out = append(out, f.clone())
		}
	})
	return out
}

// ListGroups returns every group name once, sorted ascending.
func (s *Snapshot) ListGroups() []string {
	seen := make(map[string]struct{})
	s.each(func(f WebFeature) {
		for _, g := range f.Group {
			seen[g] = struct{}{}
		}
	})

	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// BaselineFeatures returns features at or above threshold: high returns
// widely available features only, low also includes newly available ones.
func (s *Snapshot) BaselineFeatures(threshold Threshold) []WebFeature {
	var out []WebFeature
	s.each(func(f WebFeature) {
		switch f.Level() {
		case LevelHigh:
			out = append(out, f.clone())
		case LevelLow:
			if threshold == ThresholdLow {
				out = append(out, f.clone())
			}
		}
	})
	return out
}
