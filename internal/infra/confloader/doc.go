// Package confloader loads layered configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Maps supplied by the caller (CLI flags)
//  2. Environment variables (GAMESVC_ prefix)
//  3. The YAML configuration file
//  4. Defaults supplied by the caller
//
// The Watcher re-runs a callback when the configuration file changes on
// disk so selected settings can be hot reloaded.
package confloader
