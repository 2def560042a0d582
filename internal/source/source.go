// Package source resolves a usage snapshot for one invocation, making the
// remote fallback order explicit: fresh fetch, then cache, then a typed
// failure that is still renderable.
package source

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ccbar/ccbar/internal/cache"
	"github.com/ccbar/ccbar/internal/credentials"
	"github.com/ccbar/ccbar/internal/logscan"
	"github.com/ccbar/ccbar/internal/metrics"
	"github.com/ccbar/ccbar/internal/model"
	"github.com/ccbar/ccbar/internal/plan"
	"github.com/ccbar/ccbar/internal/remote"
)

// Origin tags how a snapshot was obtained.
type Origin int

const (
	// OriginFresh: fetched from the endpoint this invocation.
	OriginFresh Origin = iota
	// OriginCached: fetch failed, serving the last stored snapshot.
	OriginCached
	// OriginLocal: estimated from the local log corpus.
	OriginLocal
	// OriginFailed: nothing to show but the typed error.
	OriginFailed
)

// Result is what one invocation resolves to. Exactly one of Snapshot
// (Fresh/Cached/Local) or Err (Failed) is meaningful.
type Result struct {
	Origin   Origin
	Snapshot model.UsageSnapshot
	Age      time.Duration // staleness, when Origin is OriginCached
	Err      *remote.FetchError
	PlanName string // resolved plan identifier, when known
}

// Resolver wires the remote path's collaborators together.
type Resolver struct {
	Creds  credentials.Source
	Client *remote.Client
	Cache  *cache.Store
	Log    *zap.Logger
}

// ResolveRemote runs the fetch-then-fallback chain. It never fails: the
// worst case is a Failed result carrying the typed error.
func (r *Resolver) ResolveRemote(ctx context.Context, now time.Time) Result {
	creds, err := r.Creds.Credentials()
	if err != nil {
		fe := &remote.FetchError{Kind: remote.KindCredentialUnavailable, Err: err}
		r.Log.Debug("credential lookup failed", zap.Error(err))
		return r.fallback(now, fe)
	}

	planName := creds.RateLimitTier
	if planName == "" {
		planName = creds.SubscriptionType
	}

	snap, err := r.Client.FetchUsage(ctx, creds.AccessToken)
	if err != nil {
		var fe *remote.FetchError
		if !errors.As(err, &fe) {
			fe = &remote.FetchError{Kind: remote.KindServiceError, Err: err}
		}
		r.Log.Debug("usage fetch failed", zap.String("kind", fe.Kind.String()), zap.Error(err))
		res := r.fallback(now, fe)
		res.PlanName = planName
		return res
	}

	if err := r.Cache.Save(now, snap); err != nil {
		r.Log.Debug("cache write failed", zap.Error(err))
	}

	return Result{Origin: OriginFresh, Snapshot: snap, PlanName: planName}
}

func (r *Resolver) fallback(now time.Time, fe *remote.FetchError) Result {
	if snap, capturedAt, ok := r.Cache.Load(now); ok {
		return Result{
			Origin:   OriginCached,
			Snapshot: snap,
			Age:      now.Sub(capturedAt),
			Err:      fe,
		}
	}
	return Result{Origin: OriginFailed, Err: fe}
}

// ResolveLocal estimates the snapshot from the log corpus: one scan pass
// covering the trailing session window and the trailing week.
func ResolveLocal(scanner *logscan.Scanner, limits plan.Limits, resetDay time.Weekday, now time.Time) (Result, model.UsageWindow, model.UsageWindow) {
	windows := scanner.AggregateMulti(now.Add(-5*time.Hour), now.AddDate(0, 0, -7))
	session, week := windows[0], windows[1]

	snap := model.UsageSnapshot{
		Short: model.WindowStatus{
			Utilization: metrics.ClampPercent(limits.EstimateShortPct(session)),
			ResetsAt:    plan.NextSessionReset(now),
		},
		Long: model.WindowStatus{
			Utilization: metrics.ClampPercent(limits.EstimateLongPct(week)),
			ResetsAt:    plan.NextWeeklyReset(now, resetDay),
		},
	}

	return Result{Origin: OriginLocal, Snapshot: snap}, session, week
}
