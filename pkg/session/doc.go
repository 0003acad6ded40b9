/*
Package session runs one router per navigation session and keeps its history
in a StateStore.

A session is an in-memory history stack plus the router bound to it. The
Manager restores sessions from the store on first use, serializes operations
on the same session with ref-counted local locks (and an optional
DistributedLocker across replicas), and saves the history after every
navigation so another replica can pick the session up where it was left.
*/
package session
