// Package rerankcache persists re-rank provider scores in SQLite so repeated
// runs over the same folders do not query the provider again.
//
// Keys are derived by the matcher from the folder fingerprint, signal mode,
// catalog version and the shortlisted entry ids, so a catalog edit or a
// change in collected evidence naturally misses the cache. The store uses
// WAL journaling and retries briefly on SQLITE_BUSY so concurrent batch
// workers can share one database.
package rerankcache
