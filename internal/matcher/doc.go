// Package matcher classifies a mod folder against the catalog.
//
// A match run seeds a candidate pool from the rarest index postings the
// folder's signals hit, then applies an ordered list of scoring stages:
//
//	hash, alias, substring_deep, substring_ini, deep_tokens, ini_tokens,
//	token_overlap, direct_name
//
// After every stage the leader is tested against that stage's threshold and
// margin. A leader is accepted only when it carries primary evidence (hash,
// alias, substring or strong deep-token overlap) and no ambiguity check
// fires. Ambiguity ends the run in review. When no stage accepts, the run is
// finalized as review or no match.
//
// Review results may be handed to an injected Reranker, which can promote a
// clear winner. Runs that end without a match can fall back to a rescue pass
// that compares only the root folder name against catalog names; rescue hits
// always need review.
//
// Results are deterministic: candidates are ranked by score descending, then
// name, then entry id, and no map iteration order leaks into output.
package matcher
