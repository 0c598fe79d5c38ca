package baseline

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Suggest returns up to limit features whose id or name fuzzily matches
// query, best match first. It is meant for "did you mean" hints after
// Search comes back empty.
func (s *Snapshot) Suggest(query string, limit int) []WebFeature {
	query = strings.TrimSpace(query)
	if query == "" || s.Len() == 0 {
		return nil
	}

	targets := make([]string, len(s.ids))
	for i, id := range s.ids {
		targets[i] = id + " " + s.features[id].Name
	}

	matches := fuzzy.Find(query, targets)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]WebFeature, len(matches))
	for i, match := range matches {
		out[i] = s.features[s.ids[match.Index]].clone()
	}
	return out
}
