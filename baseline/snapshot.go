package baseline

import (
	"fmt"
	"time"
)

// Source identifies which tier produced a snapshot.
type Source string

const (
	SourcePrimary   Source = "remote-primary"
	SourceSecondary Source = "remote-secondary"
	SourceBundled   Source = "bundled"
	SourceCached    Source = "cached"
)

// Remote reports whether s came from a network tier.
func (s Source) Remote() bool {
	return s == SourcePrimary || s == SourceSecondary
}

// Snapshot is an immutable, ordered id->feature mapping. It is never mutated
// after NewSnapshot returns; replacing data means publishing a new Snapshot.
type Snapshot struct {
	ids       []string
	features  map[string]WebFeature
	Source    Source
	FetchedAt time.Time // zero for bundled data
}

// NewSnapshot builds a snapshot in payload order. A later record with a
// duplicate id replaces the earlier one but keeps its position.
func NewSnapshot(features []WebFeature, source Source, fetchedAt time.Time) *Snapshot {
	s := &Snapshot{
		ids:       make([]string, 0, len(features)),
		features:  make(map[string]WebFeature, len(features)),
		Source:    source,
		FetchedAt: fetchedAt,
	}
	for _, f := range features {
		if _, seen := s.features[f.ID]; !seen {
			s.ids = append(s.ids, f.ID)
		}
		s.features[f.ID] = f.clone()
	}
	return s
}

// SnapshotFromJSON decodes any supported payload shape into a snapshot.
func SnapshotFromJSON(data []byte, source Source, fetchedAt time.Time) (*Snapshot, error) {
	features, err := DecodeFeatures(data)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%s payload contains no features", source)
	}
	return NewSnapshot(features, source, fetchedAt), nil
}

// Len returns the number of features.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns feature ids in payload order.
func (s *Snapshot) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.ids...)
}

// Get returns a copy of the feature with id.
func (s *Snapshot) Get(id string) (WebFeature, bool) {
	if s == nil {
		return WebFeature{}, false
	}
	f, ok := s.features[id]
	if !ok {
		return WebFeature{}, false
	}
	return f.clone(), true
}

// Features returns copies of all features in payload order.
func (s *Snapshot) Features() []WebFeature {
	if s == nil {
		return nil
	}
	out := make([]WebFeature, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.features[id].clone())
	}
	return out
}

// Age is the time since the snapshot was fetched. Bundled snapshots have
// no fetch time and report ok=false.
func (s *Snapshot) Age(now time.Time) (time.Duration, bool) {
	if s == nil || s.FetchedAt.IsZero() {
		return 0, false
	}
	return now.Sub(s.FetchedAt), true
}

// withSource returns a snapshot sharing s's data under a different source.
// The data is read-only, so sharing is safe.
func (s *Snapshot) withSource(source Source) *Snapshot {
	out := *s
	out.Source = source
	return &out
}

// each calls fn for every feature in payload order without copying.
func (s *Snapshot) each(fn func(WebFeature)) {
	if s == nil {
		return
	}
	for _, id := range s.ids {
		fn(s.features[id])
	}
}
