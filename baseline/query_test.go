package baseline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func feature(id, name string, level Level, low, high string, groups ...string) WebFeature {
	return WebFeature{
		ID:     id,
		Name:   name,
		Status: &Status{Baseline: level, LowDate: low, HighDate: high},
		Group:  groups,
	}
}

func recencySnapshot() *Snapshot {
	return NewSnapshot([]WebFeature{
		feature("old", "Old", LevelHigh, "2019-12-01", "2022-06-01", "layout"),
		feature("mid", "Mid", LevelHigh, "2020-12-01", "2023-06-01", "layout", "css"),
		feature("new", "New", LevelHigh, "2021-07-01", "2024-01-01", "css"),
		feature("undated", "Undated", LevelLimited, "", ""),
		feature("fresh", "Fresh", LevelLow, "2025-03-01", "", "javascript"),
	}, SourceBundled, time.Time{})
}

func ids(features []WebFeature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.ID
	}
	return out
}

func TestFilterByRecencyHigh(t *testing.T) {
	got := recencySnapshot().FilterByRecency(date("2023-01-01"), ThresholdHigh)
	require.Equal(t, []string{"new", "mid"}, ids(got))
}

func TestFilterByRecencyIsStrictlyAfter(t *testing.T) {
	got := recencySnapshot().FilterByRecency(date("2023-06-01"), ThresholdHigh)
	require.Equal(t, []string{"new"}, ids(got))
}

func TestFilterByRecencyLow(t *testing.T) {
	got := recencySnapshot().FilterByRecency(date("2020-06-01"), ThresholdLow)
	require.Equal(t, []string{"fresh", "new", "mid"}, ids(got))
}

func TestFilterByRecencyApproximateDates(t *testing.T) {
	snap := NewSnapshot([]WebFeature{
		feature("approx", "Approx", LevelHigh, "≤2021-01-01", "≤2023-07-01"),
	}, SourceBundled, time.Time{})

	got := snap.FilterByRecency(date("2023-01-01"), ThresholdHigh)
	require.Equal(t, []string{"approx"}, ids(got))
}

func TestSearch(t *testing.T) {
	snap := NewSnapshot([]WebFeature{
		{ID: "css-grid", Name: "CSS Grid"},
		{ID: "flexbox", Name: "Flexbox"},
	}, SourceBundled, time.Time{})

	require.Equal(t, []string{"css-grid"}, ids(snap.Search("grid")))
	require.Equal(t, []string{"css-grid"}, ids(snap.Search("GRID")))
	require.Equal(t, []string{"css-grid"}, ids(snap.Search(" ")))
}

func TestSearchEmptyQueryMatchesAll(t *testing.T) {
	snap := NewSnapshot([]WebFeature{
		{ID: "flexbox", Name: "Flexbox"},
		{ID: "css-grid", Name: "CSS Grid"},
		{ID: "has", Name: ":has()"},
	}, SourceBundled, time.Time{})

	require.Equal(t, []string{"flexbox", "css-grid", "has"}, ids(snap.Search("")))

	var nilSnap *Snapshot
	require.Empty(t, nilSnap.Search(""))
}

func TestSearchMatchesDescriptionAndKeepsOrder(t *testing.T) {
	snap := NewSnapshot([]WebFeature{
		{ID: "b-feature", Name: "B", Description: "uses layout"},
		{ID: "a-feature", Name: "Layout A"},
		{ID: "c-feature", Name: "C"},
	}, SourceBundled, time.Time{})

	require.Equal(t, []string{"b-feature", "a-feature"}, ids(snap.Search("layout")))
}

func TestFilterByGroupAndListGroups(t *testing.T) {
	snap := recencySnapshot()

	require.Equal(t, []string{"old", "mid"}, ids(snap.FilterByGroup("layout")))
	require.Equal(t, []string{"mid", "new"}, ids(snap.FilterByGroup("css")))
	require.Empty(t, snap.FilterByGroup("lay"))

	require.Equal(t, []string{"css", "javascript", "layout"}, snap.ListGroups())
}

func TestBaselineFeatures(t *testing.T) {
	snap := recencySnapshot()

	require.Equal(t, []string{"old", "mid", "new"}, ids(snap.BaselineFeatures(ThresholdHigh)))
	require.Equal(t, []string{"old", "mid", "new", "fresh"}, ids(snap.BaselineFeatures(ThresholdLow)))
}

func TestSnapshotReturnsCopies(t *testing.T) {
	snap := recencySnapshot()

	f, ok := snap.Get("mid")
	require.True(t, ok)
	f.Group[0] = "mutated"
	f.Status.Baseline = LevelLimited

	again, _ := snap.Get("mid")
	require.Equal(t, []string{"layout", "css"}, again.Group)
	require.Equal(t, LevelHigh, again.Level())
}

func TestSnapshotDuplicateIDKeepsFirstPosition(t *testing.T) {
	snap := NewSnapshot([]WebFeature{
		{ID: "a", Name: "first"},
		{ID: "b", Name: "B"},
		{ID: "a", Name: "second"},
	}, SourceBundled, time.Time{})

	require.Equal(t, []string{"a", "b"}, snap.IDs())
	a, _ := snap.Get("a")
	require.Equal(t, "second", a.Name)
}

func TestNilSnapshotQueries(t *testing.T) {
	var snap *Snapshot

	_, ok := snap.Get("grid")
	require.False(t, ok)
	require.Zero(t, snap.Len())
	require.Empty(t, snap.Search("grid"))
	require.Empty(t, snap.ListGroups())
	require.Empty(t, snap.Suggest("grid", 5))
}

func TestSuggest(t *testing.T) {
	snap := NewSnapshot([]WebFeature{
		{ID: "container-queries", Name: "Container size queries"},
		{ID: "flexbox", Name: "Flexbox"},
		{ID: "grid", Name: "Grid"},
	}, SourceBundled, time.Time{})

	got := snap.Suggest("cntnrqrs", 5)
	require.NotEmpty(t, got)
	require.Equal(t, "container-queries", got[0].ID)

	require.Len(t, snap.Suggest("x", 1), 1)
	require.Empty(t, snap.Suggest("", 5))
}

func TestSourceRemote(t *testing.T) {
	require.True(t, SourcePrimary.Remote())
	require.True(t, SourceSecondary.Remote())
	require.False(t, SourceCached.Remote())
	require.False(t, SourceBundled.Remote())
}
