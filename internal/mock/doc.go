// Package mock provides in-process implementations of the provider
// interfaces for development without a vendor SDK.
//
// Behavior is driven by config.MockSettings: whether sign-in succeeds and
// with which error, the mock player and profile claims, consent, starting
// progress and simulated failures. Every call sleeps for the configured
// delay first so callers exercise their asynchronous paths.
package mock
