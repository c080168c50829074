// Package state keeps per-user conversation sessions in memory.
//
// Sessions are values: Get returns a copy and Put stores a copy, so a caller
// can build the next state without exposing half-applied changes to other
// goroutines. The map is sharded by user id; users in different shards never
// wait on each other.
package state
