// Package simbridge simulates the vendor games SDK.
//
// A Platform implements every bridge interface over a storage.KVEngine:
// saved games, achievements, leaderboards, stats and events persist in the
// engine, so a Badger-backed platform keeps progress across runs. Responses
// arrive on a worker goroutine after a configurable latency.
//
// Tests drive failure paths with FailNext, DropNext and InjectConflict:
//
//	p := simbridge.New(memory.New(), simbridge.WithLatency(0))
//	defer p.Close()
//	p.InjectConflict("slot1", serverData, serverModified)
//	p.FailNext(simbridge.OpCommitSnapshot, domain.CodeNetworkError, "offline")
package simbridge
