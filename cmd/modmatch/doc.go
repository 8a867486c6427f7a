// Package main hosts the modmatch CLI entrypoint and command graph.
//
// The Cobra-based command tree matches single folders or whole mod libraries
// against a catalog, watches the catalog for edits, inspects the catalog and
// the persistent re-rank cache, and scaffolds configuration. It centralizes
// configuration resolution, logger construction, and re-rank wiring so
// subcommands only deal with presentation.
//
// Keep this package lean: new behavior belongs in the internal packages and is
// surfaced here through dedicated commands or flags.
package main
