// Package probe issues timed HTTP GET requests against a host and folds the
// outcomes into a per-host Result.
//
// A Prober runs attempts strictly one after another. Each attempt yields an
// Outcome from a Requester: either a response (with a status code and elapsed
// time) or one of three transport-level failures. Failures are logged and
// counted; they never stop the remaining attempts.
package probe
