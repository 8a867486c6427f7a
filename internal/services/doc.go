// Package services defines shared helpers consumed by the batch runner and the
// re-rank integrations.
//
// Key responsibilities:
//   - Context helpers that stamp folder paths, budget modes, and correlation
//     identifiers so log lines from concurrent folder runs can be told apart.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent batch outcomes (failed vs skipped).
//
// Use these helpers when wiring new integrations so error classification and
// observability stay uniform across commands.
package services
