package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

// ResolverState is the conflict resolver's position in its state machine.
type ResolverState int32

// Resolver states.
const (
	ResolverIdle ResolverState = iota
	ResolverConflictDetected
	ResolverWaitingForUser
	ResolverAutoResolving
	ResolverResolved
)

// String returns the state name.
func (s ResolverState) String() string {
	switch s {
	case ResolverIdle:
		return "Idle"
	case ResolverConflictDetected:
		return "ConflictDetected"
	case ResolverWaitingForUser:
		return "WaitingForUser"
	case ResolverAutoResolving:
		return "AutoResolving"
	case ResolverResolved:
		return "Resolved"
	}
	return "Unknown"
}

// Decision sources, as labeled in metrics and logs.
const (
	SourceCaller    = "caller"
	SourceTimeout   = "timeout"
	SourceCanceled  = "canceled"
	SourceImmediate = "immediate"
)

// ConflictResolver races a caller's decision against a timeout.
type ConflictResolver struct {
	timeout atomic.Int64
	state   atomic.Int32
	log     logger.Logger
}

// NewConflictResolver creates a resolver. A timeout <= 0 resolves every
// conflict by timestamp without waiting.
func NewConflictResolver(timeout time.Duration, l logger.Logger) *ConflictResolver {
	if l == nil {
		l = logger.Default()
	}
	r := &ConflictResolver{log: l}
	r.timeout.Store(int64(timeout))
	return r
}

// SetTimeout changes the timeout for conflicts detected afterwards.
func (r *ConflictResolver) SetTimeout(d time.Duration) {
	r.timeout.Store(int64(d))
}

// Timeout returns the current timeout.
func (r *ConflictResolver) Timeout() time.Duration {
	return time.Duration(r.timeout.Load())
}

// State returns the current state.
func (r *ConflictResolver) State() ResolverState {
	return ResolverState(r.state.Load())
}

func (r *ConflictResolver) enter(s ResolverState) {
	r.state.Store(int32(s))
}

// Detected marks a conflict as reported by the bridge.
func (r *ConflictResolver) Detected() {
	r.enter(ResolverConflictDetected)
}

// Decide blocks until conflict is decided and returns the resolution to
// send to the vendor and where the decision came from.
//
// The caller decides through conflict.Resolve. If the timeout fires or ctx
// ends first, the newer snapshot wins, with ties going to the server.
func (r *ConflictResolver) Decide(ctx context.Context, conflict *domain.SavedGameConflict) (domain.ConflictResolution, string) {
	r.enter(ResolverConflictDetected)

	source := SourceImmediate
	if timeout := r.Timeout(); timeout > 0 {
		r.enter(ResolverWaitingForUser)
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case res := <-conflict.Decision():
			return r.finish(conflict, res, SourceCaller)
		case <-timer.C:
			source = SourceTimeout
			r.log.Warn("conflict resolution timed out", "filename", conflict.Filename, "timeout", timeout)
		case <-ctx.Done():
			source = SourceCanceled
			r.log.Warn("conflict resolution canceled", "filename", conflict.Filename)
		}
	}

	r.enter(ResolverAutoResolving)
	if !conflict.Resolve(conflict.ResolveByTimestamp()) {
		// The caller decided between the timer firing and this claim.
		source = SourceCaller
	}
	return r.finish(conflict, <-conflict.Decision(), source)
}

func (r *ConflictResolver) finish(conflict *domain.SavedGameConflict, res domain.ConflictResolution, source string) (domain.ConflictResolution, string) {
	r.enter(ResolverResolved)
	if res == domain.ResolutionUseManual {
		r.log.Warn("manual conflict resolution is not supported, keeping the local snapshot", "filename", conflict.Filename)
	}
	r.log.Info("save conflict resolved",
		"filename", conflict.Filename,
		"resolution", res.Effective().String(),
		"source", source,
		"local_modified", conflict.Local.LastModifiedTimestamp,
		"server_modified", conflict.Server.LastModifiedTimestamp,
	)
	return res.Effective(), source
}
