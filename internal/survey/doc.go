// Package survey holds surveys with their five fixed questions, anonymous
// responses and the result aggregation leaders read. Submission is the one
// place where a survey token is consumed: acquire, insert the response and
// consume all happen in a single transaction, so a cancelled submission
// leaves the token usable and the response unrecorded.
package survey
