package baseline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"baselinedev/config"
	"baselinedev/httpclient"
	"baselinedev/model"
)

const backendName = "baseline"

// SnapshotStore persists the last good remote snapshot across runs.
// LatestSnapshot returns nil, nil when nothing has been saved.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	LatestSnapshot(ctx context.Context) (*Snapshot, error)
}

type pinger interface {
	Ping(ctx context.Context) bool
}

type ResolverOption func(*Resolver)

func WithPrimary(src FeatureSource) ResolverOption {
	return func(r *Resolver) { r.primary = src }
}

func WithSecondary(src FeatureSource) ResolverOption {
	return func(r *Resolver) { r.secondary = src }
}

func WithBundled(src FeatureSource) ResolverOption {
	return func(r *Resolver) { r.bundled = src }
}

func WithStore(store SnapshotStore) ResolverOption {
	return func(r *Resolver) { r.store = store }
}

func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) { r.ttl = ttl }
}

func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// Resolver owns the active Snapshot and the tiered chain that replaces it.
// Queries re-read the active snapshot on every call, so a concurrent
// Refresh is observed by the next query and never mid-query.
type Resolver struct {
	primary   FeatureSource
	secondary FeatureSource
	bundled   FeatureSource
	store     SnapshotStore
	ttl       time.Duration
	now       func() time.Time

	current  atomic.Pointer[Snapshot]
	realTime atomic.Bool

	mu       sync.Mutex
	lastGood *Snapshot
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		bundled: NewBundledSource(""),
		ttl:     config.DefaultCacheTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewResolverFromConfig wires the webstatus.dev and web-features sources
// from cfg. store may be nil.
func NewResolverFromConfig(cfg *config.Config, client httpclient.Client, store SnapshotStore) *Resolver {
	opts := []ResolverOption{
		WithBundled(NewBundledSource(cfg.BundledPath)),
		WithCacheTTL(cfg.CacheTTL),
	}
	if cfg.PrimaryURL != "" {
		opts = append(opts, WithPrimary(NewWebStatusSource(client, cfg.PrimaryURL, cfg.PrimaryQuery)))
	}
	if len(cfg.SecondaryURLs) > 0 {
		opts = append(opts, WithSecondary(NewWebFeaturesSource(client, cfg.SecondaryURLs)))
	}
	if store != nil {
		opts = append(opts, WithStore(store))
	}
	return NewResolver(opts...)
}

// Initialize loads the first snapshot. Without preferRealTime it loads the
// bundled data unless a snapshot is already active. With preferRealTime it
// runs the full chain every time. A context cancelled before the call
// aborts; once started, the chain runs to completion.
func (r *Resolver) Initialize(ctx context.Context, preferRealTime bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)

	r.realTime.Store(preferRealTime)

	if !preferRealTime {
		if r.current.Load() != nil {
			return nil
		}
		snap, err := r.loadBundled(ctx)
		if err != nil {
			return model.NewError(model.KindDataSourceExhausted, backendName,
				"Baseline data unavailable: bundled dataset could not be loaded", err)
		}
		r.publish(snap)
		return nil
	}

	snap, err := r.resolveChain(ctx)
	if err != nil {
		return err
	}
	r.publish(snap)
	return nil
}

// Refresh re-runs the remote tiers. On success the active snapshot is
// replaced; on failure it is left untouched and false is returned.
func (r *Resolver) Refresh(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	ctx = context.WithoutCancel(ctx)

	snap, err := r.fetchRemote(ctx)
	if err != nil {
		config.Debugf("[Resolver] Refresh failed: %v", err)
		return false
	}
	r.publish(snap)
	return true
}

// EnsureFresh refreshes in real-time mode once the active snapshot is
// older than the cache TTL. Bundled snapshots count as stale. It reports
// whether the active snapshot is remote data within the TTL afterwards.
func (r *Resolver) EnsureFresh(ctx context.Context) bool {
	if !r.realTime.Load() {
		return false
	}
	if r.fresh(r.current.Load()) {
		return true
	}
	return r.Refresh(ctx)
}

func (r *Resolver) resolveChain(ctx context.Context) (*Snapshot, error) {
	snap, remoteErr := r.fetchRemote(ctx)
	if remoteErr == nil {
		return snap, nil
	}
	config.Debugf("[Resolver] Remote tiers failed: %v", remoteErr)

	if cached := r.cachedSnapshot(ctx); cached != nil {
		config.Debugf("[Resolver] Using cached snapshot from %s", cached.FetchedAt.Format(time.RFC3339))
		return cached.withSource(SourceCached), nil
	}

	snap, err := r.loadBundled(ctx)
	if err != nil {
		return nil, model.NewError(model.KindDataSourceExhausted, backendName,
			"Baseline data unavailable: every data source failed", errors.Join(remoteErr, err))
	}
	return snap, nil
}

// fetchRemote tries primary then secondary. A successful result becomes
// the last good snapshot and is persisted.
func (r *Resolver) fetchRemote(ctx context.Context) (*Snapshot, error) {
	tiers := []struct {
		src    FeatureSource
		source Source
	}{
		{r.primary, SourcePrimary},
		{r.secondary, SourceSecondary},
	}

	var errs []error
	for _, tier := range tiers {
		if tier.src == nil {
			continue
		}

		features, err := tier.src.Fetch(ctx)
		if err != nil {
			config.Debugf("[Resolver] %s failed: %v", tier.src.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", tier.src.Name(), err))
			continue
		}

		snap := NewSnapshot(features, tier.source, r.now())
		config.Debugf("[Resolver] Loaded %d features from %s", snap.Len(), tier.src.Name())
		r.remember(ctx, snap)
		return snap, nil
	}

	if len(errs) == 0 {
		return nil, errors.New("no remote sources configured")
	}
	return nil, errors.Join(errs...)
}

func (r *Resolver) remember(ctx context.Context, snap *Snapshot) {
	r.mu.Lock()
	r.lastGood = snap
	r.mu.Unlock()

	if r.store == nil {
		return
	}
	if err := r.store.SaveSnapshot(ctx, snap); err != nil {
		config.Debugf("[Resolver] Failed to persist snapshot: %v", err)
	}
}

// cachedSnapshot returns the in-memory last good snapshot, or the stored
// one, if it is younger than the TTL.
func (r *Resolver) cachedSnapshot(ctx context.Context) *Snapshot {
	r.mu.Lock()
	last := r.lastGood
	r.mu.Unlock()

	if r.fresh(last) {
		return last
	}

	if r.store == nil {
		return nil
	}
	stored, err := r.store.LatestSnapshot(ctx)
	if err != nil {
		config.Debugf("[Resolver] Failed to read stored snapshot: %v", err)
		return nil
	}
	if !r.fresh(stored) {
		return nil
	}

	r.mu.Lock()
	if r.lastGood == nil || r.lastGood.FetchedAt.Before(stored.FetchedAt) {
		r.lastGood = stored
	}
	r.mu.Unlock()
	return stored
}

func (r *Resolver) fresh(snap *Snapshot) bool {
	age, ok := snap.Age(r.now())
	return ok && age < r.ttl
}

func (r *Resolver) loadBundled(ctx context.Context) (*Snapshot, error) {
	if r.bundled == nil {
		return nil, errors.New("no bundled source configured")
	}
	features, err := r.bundled.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(features, SourceBundled, time.Time{}), nil
}

func (r *Resolver) publish(snap *Snapshot) {
	r.current.Store(snap)
	config.Debugf("[Resolver] Active snapshot: %d features from %s", snap.Len(), snap.Source)
}

// Snapshot returns the active snapshot, or nil before Initialize.
func (r *Resolver) Snapshot() *Snapshot {
	return r.current.Load()
}

// UsingRealTimeData reports whether the active snapshot came from the
// network, directly or through the cache.
func (r *Resolver) UsingRealTimeData() bool {
	snap := r.current.Load()
	return snap != nil && (snap.Source.Remote() || snap.Source == SourceCached)
}

// LastFetchTime is the fetch time of the active snapshot; zero for bundled
// data.
func (r *Resolver) LastFetchTime() time.Time {
	if snap := r.current.Load(); snap != nil {
		return snap.FetchedAt
	}
	return time.Time{}
}

// CheckConnection pings the primary source.
func (r *Resolver) CheckConnection(ctx context.Context) bool {
	p, ok := r.primary.(pinger)
	if !ok {
		return false
	}
	return p.Ping(ctx)
}

func (r *Resolver) Lookup(id string) (WebFeature, bool) {
	return r.current.Load().Get(id)
}

func (r *Resolver) Search(query string) []WebFeature {
	return r.current.Load().Search(query)
}

func (r *Resolver) FilterByRecency(since time.Time, threshold Threshold) []WebFeature {
	return r.current.Load().FilterByRecency(since, threshold)
}

func (r *Resolver) FilterByGroup(group string) []WebFeature {
	return r.current.Load().FilterByGroup(group)
}

func (r *Resolver) ListGroups() []string {
	return r.current.Load().ListGroups()
}

func (r *Resolver) BaselineFeatures(threshold Threshold) []WebFeature {
	return r.current.Load().BaselineFeatures(threshold)
}

func (r *Resolver) Suggest(query string, limit int) []WebFeature {
	return r.current.Load().Suggest(query, limit)
}

func (r *Resolver) FeatureCount() int {
	return r.current.Load().Len()
}
