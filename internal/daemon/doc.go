// Package daemon coordinates the long-running clipdeck process.
//
// It wires configuration, the recording session manager, the device catalog,
// the exporter and the library store into a single lifecycle with flock-based
// locking to prevent multiple instances. Every endpoint is a Daemon method
// taking and returning api DTOs, so the HTTP server here and the IPC service
// in internal/ipc stay thin adapters over the same behaviour.
//
// Stopping the daemon finalizes an active recording before the API goes down.
// Finished recordings and exports are written to the library from the session
// finish hook and after each export attempt.
package daemon
