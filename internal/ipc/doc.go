// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// The wire types alias the HTTP API DTOs so both transports stay in lockstep.
// Service methods are thin adapters over daemon endpoint methods; errors cross
// the socket as plain strings.
package ipc
