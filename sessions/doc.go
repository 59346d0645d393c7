// Package sessions enforces the single-session-per-user policy on top of the
// shared state store. Each user owns one deterministic bucket
// (chatapp:session:user:<userID>) holding the JSON-encoded Session; the
// bucket carries a TTL equal to the session lifetime, reset on every Save.
//
// Lifecycle per user:
//
//	NO_SESSION -> ACTIVE      on Save
//	ACTIVE     -> ACTIVE      on repeated Save (TTL refreshed, payload replaced)
//	ACTIVE     -> NO_SESSION  on Delete, DeleteAll, or TTL expiry
//
// There is no read-modify-write atomicity across "check existing session" and
// "overwrite"; callers needing stronger guarantees must layer their own
// optimistic check.
package sessions
