// Package quota decides whether a subscription tier may use an assistant right now.
//
// Everything here is a pure function of its inputs: the static Policy table, the
// caller-supplied usage count and the current time. The package owns no counters and
// holds no mutable state, so an Engine is safe for concurrent use. Persisting and
// atomically incrementing usage is the caller's job (see domain.UsageCounter).
package quota
