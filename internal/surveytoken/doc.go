// Package surveytoken manages single-use anonymous survey-invite tokens.
//
// Two different invariants are offered to two different operations. Issuance
// is idempotent but deliberately not serialized: a racing pair of
// EnsurePersonalToken calls may leave a harmless duplicate active token, and
// each duplicate is still individually single-use. Submission, in contrast,
// is strictly at-most-once: AcquireForSubmissionTx takes a row lock that is
// held until the enclosing transaction ends, so of two concurrent
// submissions with the same token exactly one consumes it and the other
// observes ErrGone.
//
// Tokens move issued -> redeemed or issued -> revoked; both states are
// terminal and cannot be reached from each other.
package surveytoken
