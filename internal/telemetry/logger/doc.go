// Package logger provides structured logging for gamesvc.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, configuration and dynamic level
//   - context.go: Context propagation with operation ids
//   - redact.go: Masking of auth codes, id tokens and email addresses
//
// Controllers log with a "subsystem" attribute so output from the six
// service areas can be filtered independently.
package logger
