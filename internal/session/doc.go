// Package session owns the single in-flight recording.
//
// Manager serializes Start, Stop, and Status on one mutex guarding one slot.
// Stop empties the slot before signalling the encoder, so the manager is idle
// as soon as Stop is called. Status reaps captures whose encoder already
// exited, and every ended capture is reported to the OnFinish hook outside
// the lock.
package session
