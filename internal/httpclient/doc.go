// Package httpclient provides the outbound HTTP side of repstress.
//
// [NewClient] builds an *http.Client tuned for load generation: connection
// reuse, HTTP/2 where available, and a per-call timeout that bounds one
// whole request including body download.
//
// [ReputationRequester] issues one GET against the reputation ranking
// endpoint per target and classifies the result into a tagged
// runner.Outcome:
//
//   - 200 with valid JSON body   -> success
//   - 200 with a non-JSON body   -> parse error (distinct kind, counted
//     as an error rather than silently passing as success)
//   - any other status           -> HTTP error, no retry
//   - connection/DNS/timeout     -> transport error, no retry
package httpclient
