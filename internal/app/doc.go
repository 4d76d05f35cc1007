// Package app provides the application service layer.
//
// Orchestrates use cases: status checks, instance claims, QR pairing, disconnects,
// releases. Sits between HTTP handlers and domain repositories. Depends on domain
// interfaces, not concrete implementations.
package app
