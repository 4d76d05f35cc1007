// Package server implements the HTTP server using Echo framework.
//
// Routes: the action-dispatch WhatsApp endpoint (/api/whatsapp), health probes,
// and Prometheus metrics. All business outcomes are HTTP 200 envelopes; only
// auth failures, invalid actions, and internal faults leave the 200 path.
package server
