// Package llm provides an OpenRouter-compatible chat client used by the LLM
// re-rank provider.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive a JSON response.
// Client.RankCandidates: score a candidate shortlist for one folder.
// Client.HealthCheck: verify API key and model availability.
//
// # Failure Handling
//
// Each call issues a single request. Non-2xx responses, API errors and empty
// completions are returned as errors; the re-rank guard owns timeouts, rate
// limiting and the circuit breaker.
package llm
