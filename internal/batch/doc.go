// Package batch matches many mod folders in one run.
//
// Each folder is scanned with folderscan, collected under the Quick budget
// first and re-collected under the Full budget only when the Quick pass does
// not auto-match (configurable via batch.quick_first). Folders run in
// parallel, bounded by batch.concurrency, against a shared read-only catalog.
// A file lock under the cache directory keeps two batch runs from sharing the
// re-rank cache and metrics file at once. Every run carries a correlation ID
// in its log lines and report.
package batch
