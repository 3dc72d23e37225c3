/*
Package session keeps server-side conversation transcripts.

The Manager serializes read-modify-write cycles on one conversation with a per-session
mutex (reference counted, so idle sessions hold no memory) and, when configured, a
distributed lock so several replicas can share a Redis store.
*/
package session
