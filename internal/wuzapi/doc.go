// Package wuzapi integrates with the Wuzapi WhatsApp bridge.
//
// All calls are GETs against the session API, authenticated with the claimed
// instance's token in the Token header. A circuit breaker guards the upstream;
// callers decide per operation whether a failure is swallowed or surfaced.
package wuzapi
