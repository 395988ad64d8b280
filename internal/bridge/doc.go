// Package bridge defines the binding to the vendor games SDK.
//
// Each subsystem has a call interface and a callback interface. Calls are
// fire-and-forget: results arrive later through the registered callback,
// on a goroutine owned by the SDK. Payloads are the vendor's JSON documents
// (snapshotJSON, achievementsJSON, ...), decoded with the helpers in
// payload.go.
//
// A bridge is not safe for concurrent distinct operations of the same kind.
// Controllers in internal/core/service keep at most one pending operation
// per kind (or per key) to honor that.
package bridge
