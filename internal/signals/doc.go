// Package signals extracts bounded evidence from a mod folder.
//
// Collect turns a walker's listing of a folder (FolderContents) into a
// FolderSignals snapshot: folder-name tokens, deep name tokens drawn from
// subfolder names and file stems, INI-derived tokens and strings, and content
// hashes. Work is capped by one of two budgets. Quick reads at most two
// root-level INI files; Full reaches three levels deep and shares a single
// byte cap across every INI file it reads. Budget exhaustion is never an
// error: whatever was read before the cap is returned.
//
// INI files are decoded leniently (UTF-8, UTF-16 with a byte order mark,
// then Windows-1252) so a badly encoded file degrades to partial signals
// rather than aborting a run.
//
// Cache memoizes signals per (folder, mode) for the lifetime of one batch so
// a Quick pass followed by a Full pass over the same folder reads the disk
// once per mode.
package signals
