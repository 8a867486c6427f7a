// Package catalog loads the curated entity catalog and builds the read-only
// indexes the matcher consults.
//
// A Catalog owns the entry list plus a token posting index, a hash posting
// index and the document frequencies behind TokenIDF/HashIDF. It is built
// once per load and never mutated afterwards, so any number of concurrent
// match runs may read it without locking. Reloads build a fresh Catalog and
// swap it into a Holder wholesale.
//
// Entry identity is positional: EntryID is the index of the entry in the
// loaded document.
package catalog
